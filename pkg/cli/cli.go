package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/halcyon-lab/minerva/pkg/cli/config"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// Run executes the minerva command line with the given arguments.
func Run(ctx context.Context, args []string, version string) error {
	var (
		loggerCfg config.Logger
		closeLog  func()
	)

	app := &cli.Command{
		Name:    "minerva",
		Usage:   "Retrieval-augmented chat service",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closer, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closeLog = closer

			logging.Default().Info("starting minerva",
				"version", version,
				"logger", loggerCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closeLog != nil {
				closeLog()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdIngest(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("command failed", "error", err)
		return err
	}

	return nil
}
