package result

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	rendertemplate "github.com/goliatone/go-ispdn/pkg/render/template"
	"github.com/goliatone/go-ispdn/pkg/render/template/gotemplate"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded result templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// HTMLOption configures the HTML renderer.
type HTMLOption func(*htmlConfig)

type htmlConfig struct {
	templateFS fs.FS
	templates  rendertemplate.TemplateRenderer
}

// WithTemplatesFS swaps the template bundle. It must contain
// templates/result.tmpl.
func WithTemplatesFS(files fs.FS) HTMLOption {
	return func(cfg *htmlConfig) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplateRenderer injects a custom template renderer.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) HTMLOption {
	return func(cfg *htmlConfig) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// HTMLRenderer renders the result fragment as sanitized HTML markup.
type HTMLRenderer struct {
	templates rendertemplate.TemplateRenderer
}

// NewHTMLRenderer builds the markup renderer.
func NewHTMLRenderer(options ...HTMLOption) (*HTMLRenderer, error) {
	cfg := htmlConfig{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	renderer := cfg.templates
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithGlobalData(map[string]any{
				"copy": map[string]any{
					"settledIntro":        SettledIntro,
					"requirementsHeading": RequirementsHeading,
					"undeterminedIntro":   UndeterminedIntro,
					"possibleLevels":      PossibleLevelsHeader,
					"undeterminedAdvice":  UndeterminedAdvice,
				},
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("result: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &HTMLRenderer{templates: renderer}, nil
}

func (r *HTMLRenderer) Name() string        { return "html" }
func (r *HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }

// Render executes templates/result.tmpl and sanitizes the fragment.
func (r *HTMLRenderer) Render(ctx context.Context, view View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("result: template renderer is nil")
	}
	out, err := r.templates.RenderTemplate("templates/result", map[string]any{"view": view})
	if err != nil {
		return nil, fmt.Errorf("result: render template: %w", err)
	}
	return []byte(strings.TrimSpace(markupPolicy().Sanitize(out))), nil
}

var (
	markupPolicyOnce sync.Once
	markupPolicyInst *bluemonday.Policy
)

func markupPolicy() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("section", "div", "p", "h3", "h4", "h5", "ul", "li", "span", "code")
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("data-tone", "data-section").Globally()
		policy.AllowStyles("color", "background-color").OnElements("span")
		markupPolicyInst = policy
	})
	return markupPolicyInst
}
