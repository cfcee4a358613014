package config_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"

	"github.com/halcyon-lab/minerva/pkg/cli/config"
)

func configureLogger(t *testing.T, args ...string) error {
	t.Helper()

	var cfg config.Logger
	var configureErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			closer, err := cfg.Configure()
			if err != nil {
				configureErr = err
				return nil
			}
			closer()
			return nil
		},
	}
	gt.NoError(t, cmd.Run(t.Context(), append([]string{"test"}, args...)))
	return configureErr
}

func TestLoggerConfigure(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		gt.NoError(t, configureLogger(t))
	})

	t.Run("accepts json format and debug level", func(t *testing.T) {
		gt.NoError(t, configureLogger(t, "--log-level", "debug", "--log-format", "json"))
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		gt.Error(t, configureLogger(t, "--log-level", "verbose"))
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		gt.Error(t, configureLogger(t, "--log-format", "xml"))
	})

	t.Run("writes to a log file", func(t *testing.T) {
		path := t.TempDir() + "/minerva.log"
		gt.NoError(t, configureLogger(t, "--log-output", path))
	})
}
