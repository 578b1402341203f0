package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/shared"
	"qualityqueue/internal/store"
	"qualityqueue/internal/tasks"
	"qualityqueue/internal/ui"
)

// Run reconciles the source directory against the target directory.
//
// Both directories are fingerprinted (cache-aware, concurrent), sources are
// matched to targets by exact fingerprint equality, and the session document
// is persisted. With --merge or --dry-run the reconciliation decisions are
// applied (or planned) against the target directory.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	config := r.resolveConfig(cmd)

	source := cmd.StringArg("source")
	target := cmd.StringArg("target")
	if source == "" || target == "" {
		return fmt.Errorf("%w: source and target directories are required", shared.ErrMissingArgument)
	}

	source, err := checkDir(source)
	if err != nil {
		return err
	}
	target, err = checkDir(target)
	if err != nil {
		return err
	}
	if source == target {
		return fmt.Errorf("%w: source and target must be different directories", shared.ErrInvalidArgument)
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run_id", runID)
	logger.Infof("reconciling %s against %s", source, target)

	// SIGINT finishes in-flight analysis units, persists, and skips the rest.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := time.Now()

	cachePath, err := config.CachePath()
	if err != nil {
		return err
	}
	cache, err := store.LoadCache(cachePath)
	if err != nil {
		return fmt.Errorf("failed to load fingerprint cache: %w", err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return err
	}
	statePath := store.StatePath(dataDir, source, target, cmd.String("state"))
	state, err := store.LoadState(statePath)
	if err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	}
	logger.Debugf("session document at %s (%d matched, %d unmatched)", statePath, len(state.Matched), len(state.UnmatchedTarget))

	engine := r.buildEngine(config, cache, cmd.Int("workers"), logger)

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			ui.RenderProgress(r.output, update)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() {
			close(progress)
			wg.Wait()
		})
	}
	defer drain()

	sourceFPs, err := engine.Fingerprints(ctx, source, state.ProcessedSource, progress)
	if err != nil {
		return err
	}
	targetFPs, err := engine.Fingerprints(ctx, target, map[string]fingerprint.Fingerprint{}, progress)
	if err != nil {
		return err
	}

	// Persist fingerprints once, before matching, so interrupted runs still
	// keep everything computed so far.
	if err := cache.Save(); err != nil {
		return fmt.Errorf("failed to save fingerprint cache: %w", err)
	}

	state = engine.Match(sourceFPs, targetFPs, state)
	logger.Infof("matched %d of %d sources, %d unmatched targets", len(state.Matched), len(sourceFPs), len(state.UnmatchedTarget))

	dryRun := cmd.Bool("dry-run")
	var mergeStats *tasks.MergeStats
	if cmd.Bool("merge") || dryRun {
		if ctx.Err() != nil {
			logger.Warn("run interrupted, merge skipped")
		} else {
			stats := engine.Merge(ctx, source, target, state, dryRun, progress)
			mergeStats = &stats
		}
	}

	if err := state.Save(statePath); err != nil {
		return fmt.Errorf("failed to save session state: %w", err)
	}

	drain()
	ui.RenderSummary(r.output, ui.RunSummary{
		RunID:        runID,
		SourceDir:    source,
		TargetDir:    target,
		SourceTracks: len(sourceFPs),
		TargetTracks: len(targetFPs),
		Matched:      len(state.Matched),
		Unmatched:    len(state.UnmatchedTarget),
		DryRun:       dryRun,
		Merge:        mergeStats,
		Elapsed:      time.Since(start),
	})
	logger.Infof("run finished in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
