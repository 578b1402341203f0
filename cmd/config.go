package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"qualityqueue/internal/shared"
)

// ConfigInit writes the example configuration to the given path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	r.logger.Infof("wrote example configuration to %s", path)
	r.writePlainln("Created %s", path)
	return nil
}

// configCommand handles configuration scaffolding
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml to get started",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to write the configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
		},
	}
}
