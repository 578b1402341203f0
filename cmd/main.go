package main

import (
	"context"
	"errors"
	"os"

	"qualityqueue/internal/shared"

	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "qualityqueue",
		Usage:    "Reconcile two audio directories by acoustic fingerprint",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidFlag):
			logger.Errorf("%v", err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
