// Package config holds the ispdn-wizard settings. Values come from an
// optional YAML file, then from flags and ISPDN_* environment variables.
package config

import (
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ispdn/internal/logging"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/wizard"
)

// Render formats accepted by the evaluate command.
var Formats = []string{"text", "json", "html"}

// Log configures internal/logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the resolved application configuration.
type Config struct {
	BaseURL          string        `yaml:"baseURL"`
	Catalog          string        `yaml:"catalog"`
	CatalogFile      string        `yaml:"catalogFile"`
	OutputDir        string        `yaml:"outputDir"`
	Format           string        `yaml:"format"`
	ThemeFile        string        `yaml:"themeFile"`
	ThemeVariant     string        `yaml:"themeVariant"`
	Timeout          time.Duration `yaml:"timeout"`
	ValidateContract bool          `yaml:"validateContract"`
	Log              Log           `yaml:"log"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		BaseURL:          "http://localhost:8000",
		Catalog:          wizard.DefaultCatalog,
		OutputDir:        ".",
		Format:           "text",
		Timeout:          30 * time.Second,
		ValidateContract: true,
		Log: Log{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	// #nosec G304 - path is provided by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}
	return cfg, nil
}

// Validate checks the resolved values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return goerr.New("base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return goerr.New("base URL must be absolute", goerr.V("baseURL", c.BaseURL))
	}
	if c.CatalogFile == "" {
		if _, err := wizard.Builtin(c.Catalog); err != nil {
			return goerr.Wrap(err, "unknown catalog", goerr.V("catalog", c.Catalog))
		}
	}
	if !slices.Contains(Formats, c.Format) {
		return goerr.New("unknown format", goerr.V("format", c.Format), goerr.V("allowed", Formats))
	}
	if _, err := c.Palette(); err != nil {
		return goerr.Wrap(err, "invalid theme", goerr.V("themeFile", c.ThemeFile), goerr.V("themeVariant", c.ThemeVariant))
	}
	if c.Timeout <= 0 {
		return goerr.New("timeout must be positive", goerr.V("timeout", c.Timeout))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return goerr.Wrap(err, "invalid log level")
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return goerr.New("unknown log format", goerr.V("format", c.Log.Format))
	}
	return nil
}

// Definition resolves the step catalog to use.
func (c Config) Definition() (wizard.Definition, error) {
	if c.CatalogFile == "" {
		return wizard.Builtin(c.Catalog)
	}
	// #nosec G304 - path is provided by the operator
	data, err := os.ReadFile(c.CatalogFile)
	if err != nil {
		return wizard.Definition{}, goerr.Wrap(err, "failed to read catalog file", goerr.V("path", c.CatalogFile))
	}
	return wizard.Parse(data, c.CatalogFile)
}

// Palette resolves the badge colours for ThemeVariant, from ThemeFile when
// set and from the built-in theme otherwise.
func (c Config) Palette() (result.Palette, error) {
	var (
		manifest *theme.Manifest
		name     string
	)
	if c.ThemeFile != "" {
		loaded, err := theme.LoadFile(os.DirFS(filepath.Dir(c.ThemeFile)), filepath.Base(c.ThemeFile))
		if err != nil {
			return result.Palette{}, goerr.Wrap(err, "failed to load theme file", goerr.V("path", c.ThemeFile))
		}
		manifest, name = loaded, loaded.Name
	}
	registry, err := result.NewThemeRegistry(manifest)
	if err != nil {
		return result.Palette{}, err
	}
	return result.ResolvePalette(registry, name, c.ThemeVariant)
}
