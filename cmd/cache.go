package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"qualityqueue/internal/store"
)

// loadCache resolves the cache document for the effective configuration.
func (r *Runner) loadCache(cmd *cli.Command) (*store.Cache, string, error) {
	config := r.resolveConfig(cmd)
	path, err := config.CachePath()
	if err != nil {
		return nil, "", err
	}
	cache, err := store.LoadCache(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load fingerprint cache: %w", err)
	}
	return cache, path, nil
}

// CacheShow prints the cache location and entry count, or the full document
// with --json.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	cache, path, err := r.loadCache(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(cache.Entries(), cmd.Bool("pretty"))
	}

	stats := cache.Stats()
	r.writePlainln("Cache: %s", path)
	r.writePlainln("Entries: %d", stats.Entries)
	r.writePlainln("Size: %s", humanize.Bytes(uint64(stats.SizeBytes)))
	return nil
}

// CachePrune drops cache entries whose files no longer exist.
func (r *Runner) CachePrune(ctx context.Context, cmd *cli.Command) error {
	cache, _, err := r.loadCache(cmd)
	if err != nil {
		return err
	}

	pruned := cache.Prune()
	if pruned > 0 {
		if err := cache.Save(); err != nil {
			return fmt.Errorf("failed to save fingerprint cache: %w", err)
		}
	}

	r.logger.Infof("pruned %d stale entries", pruned)
	r.writePlainln("Pruned %d entries, %d remain", pruned, cache.Len())
	return nil
}

// CacheClear removes the cache document entirely.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	cache, path, err := r.loadCache(cmd)
	if err != nil {
		return err
	}

	if err := cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear fingerprint cache: %w", err)
	}

	r.logger.Infof("cleared cache at %s", path)
	r.writePlainln("Cache cleared")
	return nil
}

// cacheCommand handles fingerprint cache maintenance
func cacheCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the fingerprint cache",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show cache location and entry count",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output the full cache document as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.CacheShow,
			},
			{
				Name:   "prune",
				Usage:  "Drop entries for files that no longer exist",
				Flags:  []cli.Flag{configFlag},
				Action: r.CachePrune,
			},
			{
				Name:   "clear",
				Usage:  "Delete the cache document",
				Flags:  []cli.Flag{configFlag},
				Action: r.CacheClear,
			},
		},
	}
}
