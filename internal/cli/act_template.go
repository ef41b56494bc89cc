package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func (a *app) cmdActTemplate() *cli.Command {
	return &cli.Command{
		Name:  "act-template",
		Usage: "Download the blank act to fill in by hand",
		Action: a.action(func(ctx context.Context, _ *cli.Command) error {
			w, err := a.wizard(ctx)
			if err != nil {
				return err
			}
			delivered, err := w.Exports.DownloadActTemplate(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to download act template")
			}
			_, err = fmt.Fprintf(a.out, "Сохранено: %s\n", delivered.Location)
			return err
		}),
	}
}
