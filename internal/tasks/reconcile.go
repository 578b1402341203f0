package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/library"
	"qualityqueue/internal/shared"
	"qualityqueue/internal/store"
)

// BatchAnalyzer fingerprints a batch of files concurrently, returning only
// successful results. The worker pool implements this.
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, paths []string) map[string]fingerprint.Result
}

// QueueEngine implements directory reconciliation. Contains dependencies on
// the worker pool, the single-file analyzer used for merge re-analysis, and
// the fingerprint cache.
//
// The engine is the only writer of the cache; workers just return results.
type QueueEngine struct {
	pool       BatchAnalyzer
	analyzer   fingerprint.Analyzer
	cache      *store.Cache
	weights    fingerprint.Weights
	extensions []string
	logger     *log.Logger
}

// QueueEngineOpts contains the dependencies for creating a QueueEngine.
type QueueEngineOpts struct {
	Pool       BatchAnalyzer
	Analyzer   fingerprint.Analyzer
	Cache      *store.Cache
	Weights    fingerprint.Weights
	Extensions []string
	Logger     *log.Logger
}

// NewQueueEngine creates a QueueEngine with the provided dependencies.
func NewQueueEngine(opts QueueEngineOpts) *QueueEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".mp3", ".wav"}
	}
	return &QueueEngine{
		pool:       opts.Pool,
		analyzer:   opts.Analyzer,
		cache:      opts.Cache,
		weights:    opts.Weights,
		extensions: opts.Extensions,
		logger:     opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *QueueEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Fingerprints produces the {path: fingerprint} map for one directory.
//
// Files whose basenames appear in processed are skipped entirely. Of the
// remaining candidates, only cache-stale files are dispatched to the pool;
// cache-valid files are merged in straight from the cache without
// recomputation. Newly computed fingerprints are recorded into processed and
// the cache as a side effect. The cache itself is not persisted here; the
// caller saves it once after both directories are done.
func (e *QueueEngine) Fingerprints(ctx context.Context, dir string, processed map[string]fingerprint.Fingerprint, progress chan<- ProgressUpdate) (map[string]fingerprint.Fingerprint, error) {
	excluded := make(map[string]bool, len(processed))
	for name := range processed {
		excluded[name] = true
	}

	candidates, err := library.ListCandidates(dir, e.extensions, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	e.sendProgress(progress, ProgressUpdate{
		Phase:   ScanDirectory,
		Total:   len(candidates),
		Message: fmt.Sprintf("found %d candidates in %s", len(candidates), dir),
	})

	var worklist []string
	for _, path := range candidates {
		if e.cache.NeedsProcessing(path) {
			worklist = append(worklist, path)
		}
	}
	e.logger.Debugf("%s: %d candidates, %d need analysis", dir, len(candidates), len(worklist))
	e.sendProgress(progress, ProgressUpdate{
		Phase:   AnalyzeFiles,
		Total:   len(worklist),
		Message: fmt.Sprintf("analyzing %d files in %s", len(worklist), dir),
	})

	results := e.pool.AnalyzeBatch(ctx, worklist)

	fingerprints := make(map[string]fingerprint.Fingerprint, len(candidates))
	for path, res := range results {
		fingerprints[path] = res.Fingerprint
		processed[filepath.Base(path)] = res.Fingerprint
		e.cache.Put(path, res.MtimeNS, res.Fingerprint)
		e.logger.Debugf("processed %s (score=%.2f)", filepath.Base(path), e.weights.Score(res.Fingerprint))
	}

	// Candidates that are cache-valid still belong in the map, sourced from
	// the cache rather than recomputed. Files whose analysis failed or was
	// cancelled stay stale and are simply omitted.
	for _, path := range candidates {
		if _, done := fingerprints[path]; done {
			continue
		}
		if e.cache.NeedsProcessing(path) {
			continue
		}
		if entry, ok := e.cache.Get(path); ok {
			fingerprints[path] = entry.Fingerprint
			processed[filepath.Base(path)] = entry.Fingerprint
			e.logger.Debugf("cache hit for %s", filepath.Base(path))
		}
	}

	e.sendProgress(progress, ProgressUpdate{
		Phase:   AnalyzeFiles,
		Step:    len(fingerprints),
		Total:   len(candidates),
		Message: fmt.Sprintf("fingerprinted %d of %d candidates", len(fingerprints), len(candidates)),
	})
	return fingerprints, nil
}

// Match binds source files to target files by exact fingerprint equality and
// updates state in place.
//
// Sources and targets are visited in sorted path order, so binding is
// deterministic within a run: each source claims the first equal target not
// already claimed. The unmatched-target set starts from the prior run's
// membership, shrinks only when a target is matched, and grows with any
// target fingerprinted this run that remains unbound.
func (e *QueueEngine) Match(sourceFPs, targetFPs map[string]fingerprint.Fingerprint, state *store.SessionState) *store.SessionState {
	unmatched := state.UnmatchedSet()

	// Targets held by sources not re-fingerprinted this run keep their claim;
	// a re-scanned source releases its prior binding for rebinding.
	claimed := make(map[string]bool, len(state.Matched))
	for src, tgt := range state.Matched {
		if _, rescanned := sourceFPs[src]; !rescanned {
			claimed[tgt] = true
		}
	}

	sources := sortedKeys(sourceFPs)
	targets := sortedKeys(targetFPs)

	for _, src := range sources {
		for _, tgt := range targets {
			if claimed[tgt] {
				continue
			}
			if sourceFPs[src].Equal(targetFPs[tgt]) {
				state.Matched[src] = tgt
				claimed[tgt] = true
				delete(unmatched, tgt)
				e.logger.Debugf("matched %s -> %s", src, tgt)
				break
			}
		}
	}

	// Any target seen this run that no source ever claimed is unmatched.
	matchedTargets := state.MatchedTargets()
	for tgt := range targetFPs {
		if _, ok := matchedTargets[tgt]; !ok {
			unmatched[tgt] = struct{}{}
		}
	}

	state.SetUnmatched(unmatched)
	state.Normalize()
	return state
}

func sortedKeys(m map[string]fingerprint.Fingerprint) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
