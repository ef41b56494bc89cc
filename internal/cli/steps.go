package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

func (a *app) cmdSteps() *cli.Command {
	return &cli.Command{
		Name:  "steps",
		Usage: "Print the active step catalog as YAML",
		Action: a.action(func(ctx context.Context, _ *cli.Command) error {
			def, err := a.cfg.Definition()
			if err != nil {
				return goerr.Wrap(err, "failed to load step catalog")
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(def); err != nil {
				return goerr.Wrap(err, "failed to encode step catalog")
			}
			return enc.Close()
		}),
	}
}
