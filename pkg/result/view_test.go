package result_test

import (
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
)

func settledResult(level int) model.EvaluationResult {
	return model.EvaluationResult{
		Level:            model.Level(level),
		BaseRequirements: []string{"Назначить ответственного", "Утвердить перечень лиц"},
		Measures: []model.Measure{
			{Code: "ЗИС.3", Section: "ЗИС", Description: "Защита каналов связи"},
			{Code: "ИАФ.1", Section: "ИАФ", Description: "Идентификация пользователей"},
			{Code: "X.1", Section: "ПРОЧЕЕ", Description: "Нестандартная мера"},
			{Code: "ИАФ.3", Section: "ИАФ", Description: "Управление идентификаторами"},
			{Code: "УПД.1", Section: "УПД", Description: "Управление учетными записями"},
			{Code: "ЗИС.1", Section: "ЗИС", Description: "Разделение функций"},
		},
	}
}

func TestRender_GroupsByCanonicalOrder(t *testing.T) {
	view := result.Render(settledResult(3), result.DefaultPalette())

	var keys []string
	for _, section := range view.Sections {
		keys = append(keys, section.Key)
	}
	if diff := cmp.Diff([]string{"ИАФ", "УПД", "ЗИС", "ПРОЧЕЕ"}, keys); diff != "" {
		t.Fatalf("section order mismatch (-want +got):\n%s", diff)
	}

	var zis []string
	for _, m := range view.Sections[2].Measures {
		zis = append(zis, m.Code)
	}
	if diff := cmp.Diff([]string{"ЗИС.3", "ЗИС.1"}, zis); diff != "" {
		t.Fatalf("in-section order mismatch (-want +got):\n%s", diff)
	}

	if view.Sections[3].Title != "ПРОЧЕЕ" {
		t.Fatalf("expected raw key fallback title, got %q", view.Sections[3].Title)
	}
	if view.Sections[0].Title != result.SectionLabel("ИАФ") || view.Sections[0].Title == "ИАФ" {
		t.Fatalf("expected long-form title for ИАФ, got %q", view.Sections[0].Title)
	}
	if view.MeasureCount != 6 || view.MeasuresTitle != "Базовый набор мер (6)" {
		t.Fatalf("unexpected measure count/title: %d %q", view.MeasureCount, view.MeasuresTitle)
	}
	if diff := cmp.Diff(settledResult(3).BaseRequirements, view.Requirements); diff != "" {
		t.Fatalf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_LevelBadgeStyling(t *testing.T) {
	palette := result.DefaultPalette()

	critical := result.Render(settledResult(1), palette).Badge
	if critical.Text != "1 уровень" || critical.Tone != result.ToneCritical {
		t.Fatalf("unexpected level 1 badge: %+v", critical)
	}

	var shared []result.Badge
	for _, level := range []int{2, 3, 4} {
		b := result.Render(settledResult(level), palette).Badge
		if b.Tone != result.ToneLevel {
			t.Fatalf("level %d: expected shared tone, got %s", level, b.Tone)
		}
		if b.Background == critical.Background || b.Color == critical.Color {
			t.Fatalf("level %d shares colours with level 1", level)
		}
		b.Text = ""
		shared = append(shared, b)
	}
	if diff := cmp.Diff(shared[0], shared[2]); diff != "" {
		t.Fatalf("levels 2 and 4 styled differently (-want +got):\n%s", diff)
	}
}

func TestRender_UndeterminedHidesMeasures(t *testing.T) {
	res := settledResult(1)
	res.UnknownThreats = true
	res.PossibleLevels = []model.PossibleLevel{
		{ThreatType: model.ThreatType1, Level: 1},
		{ThreatType: model.ThreatType2, Level: 2},
		{ThreatType: model.ThreatType3, Level: 3},
	}

	view := result.Render(res, result.DefaultPalette())
	if view.Mode != result.ModeUndetermined || view.ShowsMeasures() {
		t.Fatalf("expected undetermined view without measures, got %+v", view)
	}
	if len(view.Sections) != 0 || len(view.Requirements) != 0 {
		t.Fatalf("measures breakdown leaked into undetermined view")
	}
	if view.Badge.Text != result.UndeterminedBadgeText || view.Badge.Tone != result.ToneUndetermined {
		t.Fatalf("unexpected badge %+v", view.Badge)
	}
	if got := view.PossibleLevels[1].Text; got != "Угрозы 2 типа: уровень 2" {
		t.Fatalf("unexpected possible level text %q", got)
	}
}

func TestRender_UnknownWithoutPossibleLevelsIsSettled(t *testing.T) {
	res := settledResult(2)
	res.UnknownThreats = true

	view := result.Render(res, result.DefaultPalette())
	if view.Mode != result.ModeSettled {
		t.Fatalf("expected settled view, got %s", view.Mode)
	}
}

func TestRender_IsPure(t *testing.T) {
	res := settledResult(2)
	first := result.Render(res, result.DefaultPalette())
	second := result.Render(res, result.DefaultPalette())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("render not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(settledResult(2), res); diff != "" {
		t.Fatalf("render mutated its input (-want +got):\n%s", diff)
	}
}

func TestPaletteFromManifest_Variant(t *testing.T) {
	base := result.PaletteFromManifest(result.DefaultManifest(), "")
	dark := result.PaletteFromManifest(result.DefaultManifest(), "dark")
	if base.Critical == dark.Critical {
		t.Fatalf("expected dark variant to override critical swatch")
	}
	missing := result.PaletteFromManifest(result.DefaultManifest(), "nope")
	if diff := cmp.Diff(base, missing); diff != "" {
		t.Fatalf("unknown variant should fall back to base (-want +got):\n%s", diff)
	}
	if got := result.PaletteFromManifest(nil, ""); got != base {
		t.Fatalf("nil manifest should use defaults")
	}
}

func TestResolvePalette(t *testing.T) {
	registry, err := result.NewThemeRegistry(&theme.Manifest{
		Name:    "corporate",
		Version: "1.0.0",
		Tokens:  map[string]string{"badge.level.color": "#004488"},
		Variants: map[string]theme.Variant{
			"contrast": {Tokens: map[string]string{"badge.level.color": "#000000"}},
		},
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	base, err := result.ResolvePalette(registry, "", "")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if diff := cmp.Diff(result.DefaultPalette(), base); diff != "" {
		t.Fatalf("default theme mismatch (-want +got):\n%s", diff)
	}

	dark, err := result.ResolvePalette(registry, "", "dark")
	if err != nil {
		t.Fatalf("resolve dark: %v", err)
	}
	if diff := cmp.Diff(result.PaletteFromManifest(result.DefaultManifest(), "dark"), dark); diff != "" {
		t.Fatalf("dark variant mismatch (-want +got):\n%s", diff)
	}

	corporate, err := result.ResolvePalette(registry, "corporate", "contrast")
	if err != nil {
		t.Fatalf("resolve corporate: %v", err)
	}
	if corporate.Level.Color != "#000000" {
		t.Fatalf("expected variant token, got %q", corporate.Level.Color)
	}
	if corporate.Critical != base.Critical {
		t.Fatalf("partial theme should keep built-in critical swatch, got %+v", corporate.Critical)
	}

	if _, err := result.ResolvePalette(registry, "", "sepia"); !errors.Is(err, result.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestNewThemeRegistry_RejectsInvalidManifest(t *testing.T) {
	if _, err := result.NewThemeRegistry(&theme.Manifest{Name: "broken"}); err == nil {
		t.Fatalf("expected manifest validation error")
	}
}
