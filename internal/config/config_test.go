package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ispdn/internal/config"
	"github.com/goliatone/go-ispdn/pkg/result"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, "ispdn.yaml", "baseURL: https://ispdn.example/api\nformat: html\ntimeout: 5s\nlog:\n  level: debug\n")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Default()
	want.BaseURL = "https://ispdn.example/api"
	want.Format = "html"
	want.Timeout = 5 * time.Second
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := config.Load(writeFile(t, "bad.yaml", "timeout: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{name: "empty base url", mutate: func(c *config.Config) { c.BaseURL = " " }, want: "base URL is required"},
		{name: "relative base url", mutate: func(c *config.Config) { c.BaseURL = "/api" }, want: "base URL must be absolute"},
		{name: "unknown catalog", mutate: func(c *config.Config) { c.Catalog = "five-step" }, want: "unknown catalog"},
		{name: "unknown format", mutate: func(c *config.Config) { c.Format = "pdf" }, want: "unknown format"},
		{name: "zero timeout", mutate: func(c *config.Config) { c.Timeout = 0 }, want: "timeout must be positive"},
		{name: "log level", mutate: func(c *config.Config) { c.Log.Level = "loud" }, want: "invalid log level"},
		{name: "log format", mutate: func(c *config.Config) { c.Log.Format = "xml" }, want: "unknown log format"},
		{name: "theme variant", mutate: func(c *config.Config) { c.ThemeVariant = "sepia" }, want: "invalid theme"},
		{name: "theme file", mutate: func(c *config.Config) { c.ThemeFile = "/nonexistent/theme.yaml" }, want: "invalid theme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefinition(t *testing.T) {
	cfg := config.Default()
	cfg.Catalog = "four-step"
	def, err := cfg.Definition()
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if len(def.Steps) != 4 {
		t.Fatalf("expected four steps, got %d", len(def.Steps))
	}

	cfg.CatalogFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Definition(); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}

func resolve(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var flags config.Flags
	var cfg config.Config
	var resolveErr error
	cmd := &cli.Command{
		Name:  "ispdn-wizard",
		Flags: flags.Flags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, resolveErr = flags.Resolve(cmd)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"ispdn-wizard"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return cfg, resolveErr
}

func TestFlags_Precedence(t *testing.T) {
	path := writeFile(t, "ispdn.yaml", "baseURL: https://file.example\nformat: html\nvalidateContract: false\n")
	t.Setenv("ISPDN_THEME_VARIANT", "dark")

	cfg, err := resolve(t, "--config", path, "--format", "json", "--timeout", "2s")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.BaseURL != "https://file.example" {
		t.Fatalf("file value lost: %q", cfg.BaseURL)
	}
	if cfg.Format != "json" || cfg.Timeout != 2*time.Second {
		t.Fatalf("flag values not applied: %+v", cfg)
	}
	if cfg.ThemeVariant != "dark" {
		t.Fatalf("env value not applied: %q", cfg.ThemeVariant)
	}
	if cfg.ValidateContract {
		t.Fatalf("unset flag overrode the config file")
	}
}

func TestFlags_InvalidValue(t *testing.T) {
	if _, err := resolve(t, "--format", "pdf"); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPalette(t *testing.T) {
	cfg := config.Default()
	cfg.ThemeVariant = "dark"
	palette, err := cfg.Palette()
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	if diff := cmp.Diff(result.PaletteFromManifest(result.DefaultManifest(), "dark"), palette); diff != "" {
		t.Fatalf("dark palette mismatch (-want +got):\n%s", diff)
	}

	cfg.ThemeVariant = "sepia"
	if _, err := cfg.Palette(); !errors.Is(err, result.ErrUnknownVariant) {
		t.Fatalf("expected ErrUnknownVariant, got %v", err)
	}
}

func TestPalette_ThemeFile(t *testing.T) {
	cfg := config.Default()
	cfg.ThemeFile = writeFile(t, "theme.yaml", `name: corporate
version: 1.0.0
tokens:
  badge.level.color: "#004488"
variants:
  print:
    tokens:
      badge.level.background: "#ffffff"
`)
	cfg.ThemeVariant = "print"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	palette, err := cfg.Palette()
	if err != nil {
		t.Fatalf("palette: %v", err)
	}
	want := result.DefaultPalette()
	want.Level = result.Swatch{Background: "#ffffff", Color: "#004488"}
	if diff := cmp.Diff(want, palette); diff != "" {
		t.Fatalf("palette mismatch (-want +got):\n%s", diff)
	}

	cfg.ThemeVariant = "dark"
	if _, err := cfg.Palette(); !errors.Is(err, result.ErrUnknownVariant) {
		t.Fatalf("operator theme does not declare dark, got %v", err)
	}
}
