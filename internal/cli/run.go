package cli

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-ispdn/pkg/tui"
)

func (a *app) cmdRun() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Answer the questionnaire interactively (default)",
		Action: a.action(a.runSession),
	}
}

func (a *app) runSession(ctx context.Context, _ *cli.Command) error {
	w, err := a.wizard(ctx)
	if err != nil {
		return err
	}
	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.out)
	}
	session, err := w.Session(tui.WithPromptDriver(driver), tui.WithLogger(a.logger))
	if err != nil {
		return err
	}
	if err := session.Run(ctx); err != nil && !errors.Is(err, tui.ErrAborted) {
		return err
	}
	return nil
}
