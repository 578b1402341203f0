// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// runCommand is the primary reconciliation entrypoint
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Fingerprint, match and optionally merge source into target",
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
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:  "merge",
				Usage: "Apply the reconciliation to the target directory",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Log merge decisions without touching any file",
			},
			&cli.StringFlag{
				Name:  "state",
				Usage: "Explicit session document path, bypassing the derived location",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent analysis workers, overrides the configured pool size",
			},
		},
		Action: r.Run,
	}
}
