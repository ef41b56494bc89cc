package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Flags binds command line flags and environment variables. Resolve layers
// the values that were actually set over the config file.
type Flags struct {
	path    string
	values  Config
	setters []func(cmd *cli.Command, cfg *Config)
}

// Flags returns the flag definitions. Defaults live in Default, not here,
// so an unset flag never hides a value from the config file.
func (f *Flags) Flags() []cli.Flag {
	f.setters = nil
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "YAML configuration file",
			Destination: &f.path,
			Sources:     cli.EnvVars("ISPDN_CONFIG"),
		},
		f.str("base-url", "ISPDN_BASE_URL", "Backend base URL", &f.values.BaseURL, func(c *Config, v string) { c.BaseURL = v }),
		f.str("catalog", "ISPDN_CATALOG", "Built-in step catalog (three-step, four-step)", &f.values.Catalog, func(c *Config, v string) { c.Catalog = v }),
		f.str("catalog-file", "ISPDN_CATALOG_FILE", "Step catalog file (YAML or JSON)", &f.values.CatalogFile, func(c *Config, v string) { c.CatalogFile = v }),
		f.str("output-dir", "ISPDN_OUTPUT_DIR", "Directory receiving exported documents", &f.values.OutputDir, func(c *Config, v string) { c.OutputDir = v }),
		f.str("format", "ISPDN_FORMAT", "Result format (text, json, html)", &f.values.Format, func(c *Config, v string) { c.Format = v }),
		f.str("theme-file", "ISPDN_THEME_FILE", "Badge theme manifest (YAML or JSON)", &f.values.ThemeFile, func(c *Config, v string) { c.ThemeFile = v }),
		f.str("theme-variant", "ISPDN_THEME_VARIANT", "Badge palette variant", &f.values.ThemeVariant, func(c *Config, v string) { c.ThemeVariant = v }),
		f.str("log-level", "ISPDN_LOG_LEVEL", "Log level (debug, info, warn, error)", &f.values.Log.Level, func(c *Config, v string) { c.Log.Level = v }),
		f.str("log-format", "ISPDN_LOG_FORMAT", "Log format (console, json)", &f.values.Log.Format, func(c *Config, v string) { c.Log.Format = v }),
		f.duration(),
		f.validateContract(),
	}
}

// Resolve loads the config file and applies every flag that was set.
func (f *Flags) Resolve(cmd *cli.Command) (Config, error) {
	cfg, err := Load(f.path)
	if err != nil {
		return cfg, err
	}
	for _, set := range f.setters {
		set(cmd, &cfg)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, goerr.Wrap(err, "invalid configuration", goerr.V("config", f.path))
	}
	return cfg, nil
}

func (f *Flags) str(name, env, usage string, dst *string, apply func(*Config, string)) cli.Flag {
	f.setters = append(f.setters, func(cmd *cli.Command, cfg *Config) {
		if cmd.IsSet(name) {
			apply(cfg, *dst)
		}
	})
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Destination: dst,
		Sources:     cli.EnvVars(env),
	}
}

func (f *Flags) duration() cli.Flag {
	const name = "timeout"
	f.setters = append(f.setters, func(cmd *cli.Command, cfg *Config) {
		if cmd.IsSet(name) {
			cfg.Timeout = f.values.Timeout
		}
	})
	return &cli.DurationFlag{
		Name:        name,
		Usage:       "Backend request timeout",
		Destination: &f.values.Timeout,
		Sources:     cli.EnvVars("ISPDN_TIMEOUT"),
	}
}

func (f *Flags) validateContract() cli.Flag {
	const name = "validate-contract"
	f.setters = append(f.setters, func(cmd *cli.Command, cfg *Config) {
		if cmd.IsSet(name) {
			cfg.ValidateContract = f.values.ValidateContract
		}
	})
	return &cli.BoolFlag{
		Name:        name,
		Usage:       "Check requests and responses against the embedded OpenAPI contract",
		Destination: &f.values.ValidateContract,
		Sources:     cli.EnvVars("ISPDN_VALIDATE_CONTRACT"),
	}
}
