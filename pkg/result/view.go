// Package result turns an EvaluationResult into a presentable view: the
// level badge, the organisational requirements and the measures grouped by
// section in canonical order. Render is pure; the text and HTML renderers
// only format the view it returns.
package result

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-ispdn/pkg/model"
)

// Mode distinguishes a settled level from a set of hypothetical ones.
type Mode string

const (
	ModeSettled      Mode = "settled"
	ModeUndetermined Mode = "undetermined"
)

// Fixed copy shown around the result.
const (
	InitialBadgeText      = "—"
	UndeterminedBadgeText = "Не определен"

	SettledIntro         = "Рассчитан уровень защищенности"
	RequirementsHeading  = "Основные организационные требования:"
	UndeterminedIntro    = "Тип угроз выбран как «не известен»."
	PossibleLevelsHeader = "Возможные уровни защищенности"
	UndeterminedAdvice   = "Для уточнения уровня защищенности закажите услугу специалиста по определению типа актуальных угроз, после этого выполните перерасчет."
)

// Badge is the level marker shown next to the wizard.
type Badge struct {
	Text       string `json:"text"`
	Tone       Tone   `json:"tone"`
	Background string `json:"background,omitempty"`
	Color      string `json:"color,omitempty"`
}

// Section groups the measures of one category.
type Section struct {
	Key      string          `json:"key"`
	Title    string          `json:"title"`
	Measures []model.Measure `json:"measures"`
}

// PossibleLevel is one line of the undetermined panel.
type PossibleLevel struct {
	ThreatType string `json:"threatType"`
	Level      int    `json:"level"`
	Text       string `json:"text"`
}

// View is the renderer-agnostic presentation of an evaluation.
type View struct {
	Mode           Mode            `json:"mode"`
	Badge          Badge           `json:"badge"`
	Level          *int            `json:"level,omitempty"`
	Heading        string          `json:"heading,omitempty"`
	Requirements   []string        `json:"requirements,omitempty"`
	Sections       []Section       `json:"sections,omitempty"`
	MeasureCount   int             `json:"measureCount"`
	MeasuresTitle  string          `json:"measuresTitle,omitempty"`
	PossibleLevels []PossibleLevel `json:"possibleLevels,omitempty"`
}

// ShowsMeasures reports whether the view carries a measures breakdown.
func (v View) ShowsMeasures() bool {
	return v.Mode == ModeSettled
}

// InitialBadge is the badge shown before any evaluation.
func InitialBadge() Badge {
	return Badge{Text: InitialBadgeText, Tone: ToneInitial}
}

// LevelBadge styles a settled level. Level 1 gets the critical tone, every
// other level shares the regular one.
func LevelBadge(level int, palette Palette) Badge {
	tone := ToneLevel
	if level == 1 {
		tone = ToneCritical
	}
	return badge(fmt.Sprintf("%d уровень", level), tone, palette)
}

// Render builds the view for res. The same input always yields the same view.
func Render(res model.EvaluationResult, palette Palette) View {
	if res.Undetermined() {
		view := View{
			Mode:  ModeUndetermined,
			Badge: badge(UndeterminedBadgeText, ToneUndetermined, palette),
		}
		for _, item := range res.PossibleLevels {
			view.PossibleLevels = append(view.PossibleLevels, PossibleLevel{
				ThreatType: string(item.ThreatType),
				Level:      item.Level,
				Text:       fmt.Sprintf("Угрозы %s типа: уровень %d", item.ThreatType, item.Level),
			})
		}
		return view
	}

	view := View{
		Mode:          ModeSettled,
		Requirements:  append([]string(nil), res.BaseRequirements...),
		Sections:      GroupMeasures(res.Measures),
		MeasureCount:  len(res.Measures),
		MeasuresTitle: fmt.Sprintf("Базовый набор мер (%d)", len(res.Measures)),
	}
	if res.Level != nil {
		level := *res.Level
		view.Level = &level
		view.Badge = LevelBadge(level, palette)
		view.Heading = fmt.Sprintf("Уровень %d", level)
	} else {
		view.Badge = badge(UndeterminedBadgeText, ToneUndetermined, palette)
		view.Heading = UndeterminedBadgeText
	}
	return view
}

// GroupMeasures buckets measures by section. Canonical sections come first in
// SectionOrder, unknown sections follow in first-seen order, and measures keep
// their input order inside each section.
func GroupMeasures(measures []model.Measure) []Section {
	if len(measures) == 0 {
		return nil
	}

	buckets := make(map[string]*Section)
	var extras []string
	for _, measure := range measures {
		key := normalizeSection(measure.Section)
		if _, known := sectionRank(key); !known {
			key = strings.TrimSpace(measure.Section)
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &Section{Key: key, Title: SectionLabel(key)}
			buckets[key] = bucket
			if _, known := sectionRank(key); !known {
				extras = append(extras, key)
			}
		}
		bucket.Measures = append(bucket.Measures, measure)
	}

	out := make([]Section, 0, len(buckets))
	for _, key := range SectionOrder {
		if bucket, ok := buckets[key]; ok {
			out = append(out, *bucket)
		}
	}
	for _, key := range extras {
		out = append(out, *buckets[key])
	}
	return out
}

func badge(text string, tone Tone, palette Palette) Badge {
	swatch := palette.Swatch(tone)
	return Badge{
		Text:       text,
		Tone:       tone,
		Background: swatch.Background,
		Color:      swatch.Color,
	}
}
