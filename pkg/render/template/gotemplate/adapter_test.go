package gotemplate_test

import (
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-ispdn/pkg/render/template/gotemplate"
	"github.com/goliatone/go-ispdn/pkg/testsupport"
)

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()
	files := fstest.MapFS{
		"templates/hello.tmpl":      {Data: []byte("Hello {{ name }}!")},
		"templates/use-global.tmpl": {Data: []byte("env={{ settings.env }}")},
		"templates/escape.tmpl":     {Data: []byte("<p>{{ text }}</p>")},
		"templates/trim.tmpl":       {Data: []byte("[{{ pad|trim }}]")},
	}
	engine, err := gotemplate.New(gotemplate.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("templates/hello", map[string]any{"name": "Ada"}, w)
	})

	if result != "Hello Ada!" {
		t.Fatalf("render template mismatch: %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", result, written)
	}
}

func TestEngine_StructUsesJSONTags(t *testing.T) {
	engine := newEngine(t)
	type payload struct {
		Name string `json:"name"`
	}

	result, err := engine.RenderTemplate("templates/hello", payload{Name: "Grace"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Hello Grace!" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("templates/use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestEngine_EscapesValues(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("templates/escape", map[string]any{"text": "<script>x</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(result, "<script>") {
		t.Fatalf("expected escaped output, got %q", result)
	}
}

func TestEngine_TrimFilter(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("templates/trim", map[string]any{"pad": "  x \n"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "[x]" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}
