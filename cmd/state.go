package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"qualityqueue/internal/formatter"
	"qualityqueue/internal/shared"
	"qualityqueue/internal/store"
)

// StateShow renders the session document for a (source, target) pair in the
// requested format.
func (r *Runner) StateShow(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd)

	source := cmd.StringArg("source")
	target := cmd.StringArg("target")
	override := cmd.String("state")
	if override == "" && (source == "" || target == "") {
		return fmt.Errorf("%w: source and target directories (or --state) are required", shared.ErrMissingArgument)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	path := store.StatePath(dataDir, source, target, override)

	state, err := store.LoadState(path)
	if err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	}

	data, err := formatter.Export(state, cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return r.writePlain("%s", data)
}

// stateCommand handles session document inspection
func stateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect session documents",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Render the session document for a directory pair",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "source"},
					&cli.StringArg{Name: "target"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "state",
						Usage: "Explicit session document path, bypassing the derived location",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, table or text",
						Value:   "json",
					},
				},
				Action: r.StateShow,
			},
		},
	}
}
