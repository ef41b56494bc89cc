package result

import (
	"bytes"
	"context"
	"fmt"
)

// TextRenderer writes a plain text report for terminals.
type TextRenderer struct{}

// NewTextRenderer returns the terminal renderer.
func NewTextRenderer() *TextRenderer { return &TextRenderer{} }

func (r *TextRenderer) Name() string        { return "text" }
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render formats view as indented plain text.
func (r *TextRenderer) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s]\n\n", view.Badge.Text)

	if view.Mode == ModeUndetermined {
		fmt.Fprintln(&buf, UndeterminedIntro)
		fmt.Fprintln(&buf, PossibleLevelsHeader)
		for _, item := range view.PossibleLevels {
			fmt.Fprintf(&buf, "  • %s\n", item.Text)
		}
		fmt.Fprintf(&buf, "\n%s\n", UndeterminedAdvice)
		return buf.Bytes(), nil
	}

	fmt.Fprintln(&buf, SettledIntro)
	fmt.Fprintln(&buf, view.Heading)
	if len(view.Requirements) > 0 {
		fmt.Fprintln(&buf, RequirementsHeading)
		for _, req := range view.Requirements {
			fmt.Fprintf(&buf, "  • %s\n", req)
		}
	}

	fmt.Fprintf(&buf, "\n%s\n", view.MeasuresTitle)
	for _, section := range view.Sections {
		fmt.Fprintf(&buf, "\n%s (%s)\n", section.Title, section.Key)
		for _, measure := range section.Measures {
			fmt.Fprintf(&buf, "  %s  %s\n", measure.Code, measure.Description)
		}
	}
	return buf.Bytes(), nil
}
