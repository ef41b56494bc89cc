package result_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
)

func TestDefaultRegistry(t *testing.T) {
	reg, err := result.DefaultRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if got := strings.Join(reg.List(), ","); got != "html,json,text" {
		t.Fatalf("unexpected renderers %q", got)
	}
	if _, err := reg.Get("pdf"); err == nil {
		t.Fatalf("expected missing renderer error")
	}
	if err := reg.Register(result.NewTextRenderer()); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestHTMLRenderer_Settled(t *testing.T) {
	renderer, err := result.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	res := settledResult(1)
	res.Measures = append(res.Measures, model.Measure{Code: "АВЗ.1", Section: "АВЗ", Description: "<script>alert(1)</script>"})

	out, err := renderer.Render(context.Background(), result.Render(res, result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	if strings.Contains(html, "<script") {
		t.Fatalf("expected script to be neutralised:\n%s", html)
	}
	for _, want := range []string{"1 уровень", "Уровень 1", "Базовый набор мер (7)", "Назначить ответственного", `data-tone="critical"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}

	order := []string{`data-section="ИАФ"`, `data-section="УПД"`, `data-section="АВЗ"`, `data-section="ЗИС"`, `data-section="ПРОЧЕЕ"`}
	last := -1
	for _, marker := range order {
		idx := strings.Index(html, marker)
		if idx < 0 || idx < last {
			t.Fatalf("section %s out of order:\n%s", marker, html)
		}
		last = idx
	}
}

func TestHTMLRenderer_TrimsCatalogText(t *testing.T) {
	renderer, err := result.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	res := settledResult(2)
	res.BaseRequirements = []string{"  Назначить ответственного\n"}
	res.Measures = []model.Measure{{Code: "ИАФ.1", Section: "ИАФ", Description: "\n  Идентификация пользователей  "}}

	out, err := renderer.Render(context.Background(), result.Render(res, result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{"<li>Назначить ответственного</li>", ">Идентификация пользователей</p>"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

type cannedTemplates struct{ names []string }

func (c *cannedTemplates) RenderTemplate(name string, _ any, _ ...io.Writer) (string, error) {
	c.names = append(c.names, name)
	return `<p onclick="x()">canned</p>`, nil
}

func (c *cannedTemplates) GlobalContext(any) error { return nil }

func TestHTMLRenderer_CustomTemplateRenderer(t *testing.T) {
	templates := &cannedTemplates{}
	renderer, err := result.NewHTMLRenderer(result.WithTemplateRenderer(templates))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	out, err := renderer.Render(context.Background(), result.Render(settledResult(1), result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "<p>canned</p>" {
		t.Fatalf("expected sanitized canned output, got %q", out)
	}
	if len(templates.names) != 1 || templates.names[0] != "templates/result" {
		t.Fatalf("unexpected template lookups %v", templates.names)
	}
}

func TestHTMLRenderer_Undetermined(t *testing.T) {
	renderer, err := result.NewHTMLRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	res := settledResult(2)
	res.UnknownThreats = true
	res.PossibleLevels = []model.PossibleLevel{{ThreatType: model.ThreatType1, Level: 1}}

	out, err := renderer.Render(context.Background(), result.Render(res, result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if strings.Contains(html, "measures__section") || strings.Contains(html, "Базовый набор мер") {
		t.Fatalf("undetermined markup must not contain measures:\n%s", html)
	}
	for _, want := range []string{"Не определен", "Угрозы 1 типа: уровень 1", result.PossibleLevelsHeader} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestJSONRenderer(t *testing.T) {
	out, err := result.NewJSONRenderer().Render(context.Background(), result.Render(settledResult(2), result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded struct {
		Mode     string `json:"mode"`
		Level    int    `json:"level"`
		Sections []struct {
			Key string `json:"key"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Mode != "settled" || decoded.Level != 2 || decoded.Sections[0].Key != "ИАФ" {
		t.Fatalf("unexpected json view: %s", out)
	}
}

func TestTextRenderer(t *testing.T) {
	out, err := result.NewTextRenderer().Render(context.Background(), result.Render(settledResult(3), result.DefaultPalette()))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	text := string(out)
	if !strings.HasPrefix(text, "[3 уровень]") {
		t.Fatalf("unexpected header:\n%s", text)
	}
	if strings.Index(text, "ИАФ.1") > strings.Index(text, "УПД.1") {
		t.Fatalf("sections out of order:\n%s", text)
	}
}
