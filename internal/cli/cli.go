// Package cli is the ispdn-wizard command tree.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	ispdn "github.com/goliatone/go-ispdn"
	"github.com/goliatone/go-ispdn/internal/config"
	"github.com/goliatone/go-ispdn/internal/logging"
	"github.com/goliatone/go-ispdn/pkg/export"
	"github.com/goliatone/go-ispdn/pkg/tui"
)

// Run executes the command line in args.
func Run(ctx context.Context, args []string, version string) error {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.command(version).Run(ctx, args); err != nil {
		logging.Error(ctx, "failed to run ispdn-wizard", err)
		return err
	}
	return nil
}

type app struct {
	flags  config.Flags
	cfg    config.Config
	logger *slog.Logger

	in     io.Reader
	out    io.Writer
	logOut io.Writer

	// driver replaces the survey prompts, nil in production.
	driver tui.PromptDriver
}

func newApp(in io.Reader, out, logOut io.Writer) *app {
	return &app{in: in, out: out, logOut: logOut, logger: logging.Default()}
}

func (a *app) command(version string) *cli.Command {
	return &cli.Command{
		Name:    "ispdn-wizard",
		Usage:   "Determine the personal data protection level of an information system",
		Version: version,
		Flags:   a.flags.Flags(),
		Action:  a.action(a.runSession),
		Commands: []*cli.Command{
			a.cmdRun(),
			a.cmdEvaluate(),
			a.cmdActTemplate(),
			a.cmdSteps(),
		},
	}
}

// action resolves configuration and logging before fn runs. Flags are
// persistent, so resolving on the invoked command sees every flag set on it
// or on the root.
func (a *app) action(fn cli.ActionFunc) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := a.flags.Resolve(cmd)
		if err != nil {
			return err
		}
		logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.logOut})
		if err != nil {
			return goerr.Wrap(err, "failed to configure logger")
		}
		logging.SetDefault(logger)
		a.cfg = cfg
		a.logger = logger

		ctx = logging.With(ctx, logger)
		logger.Debug("configuration resolved",
			slog.String("baseURL", cfg.BaseURL),
			slog.String("catalog", cfg.Catalog),
			slog.String("catalogFile", cfg.CatalogFile),
			slog.String("format", cfg.Format),
			slog.Duration("timeout", cfg.Timeout),
		)
		return fn(ctx, cmd)
	}
}

// wizard wires the wizard from the resolved configuration.
func (a *app) wizard(ctx context.Context) (*ispdn.Wizard, error) {
	def, err := a.cfg.Definition()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load step catalog")
	}
	palette, err := a.cfg.Palette()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve theme")
	}
	w, err := ispdn.NewWizard(ctx, a.cfg.BaseURL,
		ispdn.WithDefinition(def),
		ispdn.WithTimeout(a.cfg.Timeout),
		ispdn.WithContractValidation(a.cfg.ValidateContract),
		ispdn.WithPalette(palette),
		ispdn.WithDelivery(export.DirDelivery{Dir: a.cfg.OutputDir}),
		ispdn.WithLogger(a.logger),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build wizard", goerr.V("baseURL", a.cfg.BaseURL))
	}
	return w, nil
}

func elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}
