package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/result"
	"github.com/goliatone/go-ispdn/pkg/wizard"
)

func (a *app) cmdEvaluate() *cli.Command {
	var answersPath string
	var saveName string

	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"e"},
		Usage:   "Submit an answers file and print the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "answers",
				Aliases:     []string{"a"},
				Usage:       "Answers file (YAML or JSON), - reads stdin",
				Required:    true,
				Destination: &answersPath,
				Sources:     cli.EnvVars("ISPDN_ANSWERS"),
			},
			&cli.StringFlag{
				Name:        "save",
				Usage:       "Also save the report under this name",
				Destination: &saveName,
			},
		},
		Action: a.action(func(ctx context.Context, cmd *cli.Command) error {
			answers, err := a.readAnswers(answersPath)
			if err != nil {
				return err
			}
			w, err := a.wizard(ctx)
			if err != nil {
				return err
			}

			start := time.Now()
			view, err := w.Submit(ctx, answers)
			if err != nil {
				var verr *wizard.ValidationError
				if errors.As(err, &verr) {
					return goerr.Wrap(err, "answers rejected", goerr.V("step", verr.StepID), goerr.V("message", verr.Message))
				}
				return goerr.Wrap(err, "evaluation failed")
			}
			a.logger.Info("evaluation done", slog.String("mode", string(view.Mode)), slog.Int("measures", view.MeasureCount), elapsed(start))

			if err := a.printView(ctx, view); err != nil {
				return err
			}

			if cmd.IsSet("save") {
				delivered, err := w.Exports.SaveReport(ctx, saveName)
				if err != nil {
					return goerr.Wrap(err, "failed to save report", goerr.V("name", saveName))
				}
				a.logger.Info("report saved", slog.String("location", delivered.Location), slog.Int("bytes", delivered.Size))
			}
			return nil
		}),
	}
}

func (a *app) readAnswers(path string) (model.AnswerSet, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		// #nosec G304 - path is provided by the operator
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.AnswerSet{}, goerr.Wrap(err, "failed to read answers", goerr.V("path", path))
	}

	var answers model.AnswerSet
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return model.AnswerSet{}, goerr.Wrap(err, "failed to parse answers", goerr.V("path", path))
	}
	return answers, nil
}

func (a *app) printView(ctx context.Context, view result.View) error {
	registry, err := result.DefaultRegistry()
	if err != nil {
		return err
	}
	renderer, err := registry.Get(a.cfg.Format)
	if err != nil {
		return goerr.Wrap(err, "unknown format", goerr.V("format", a.cfg.Format))
	}
	body, err := renderer.Render(ctx, view)
	if err != nil {
		return goerr.Wrap(err, "failed to render result", goerr.V("renderer", renderer.Name()))
	}
	if _, err := a.out.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err = fmt.Fprintln(a.out)
	}
	return err
}
