package fingerprint

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"qualityqueue/internal/shared"
)

// Result is one successful unit of work from a batch: the fingerprint plus
// the file's modification time observed alongside the computation, ready for
// the coordinator to record into the cache.
type Result struct {
	Path        string
	Fingerprint Fingerprint
	MtimeNS     int64
}

// PoolOpts configures a fingerprinting worker pool.
type PoolOpts struct {
	Workers  int     // Concurrent workers (default: 4, capped at 32)
	Throttle float64 // Files dispatched per second across the pool, 0 disables
}

// Pool dispatches fingerprinting work for a batch of files across a fixed
// number of workers. Scheduling is order-independent: each file is an
// independent unit of work and results are collected as they complete.
type Pool struct {
	analyzer Analyzer
	workers  int
	limiter  *rate.Limiter
	logger   *log.Logger
}

// NewPool creates a Pool running the given analyzer.
func NewPool(analyzer Analyzer, opts PoolOpts, logger *log.Logger) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 32 {
		opts.Workers = 32
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.Throttle > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Throttle), 1)
	}

	return &Pool{
		analyzer: analyzer,
		workers:  opts.Workers,
		limiter:  limiter,
		logger:   logger,
	}
}

type outcome struct {
	path    string
	mtimeNS int64
	fp      Fingerprint
	err     error
}

// AnalyzeBatch fingerprints paths concurrently and returns successful results
// keyed by path. A single file's failure is logged and omitted from the map;
// it never aborts the batch.
//
// Cancellation is cooperative: once ctx is done, no further work is
// dispatched, workers drain, and whatever already completed is returned
// promptly as a partial map.
func (p *Pool) AnalyzeBatch(ctx context.Context, paths []string) map[string]Result {
	results := make(map[string]Result, len(paths))
	if len(paths) == 0 {
		return results
	}

	jobs := make(chan string)
	outcomes := make(chan outcome)

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				// Checked before starting each unit of work.
				if ctx.Err() != nil {
					return
				}
				if p.limiter != nil {
					if err := p.limiter.Wait(ctx); err != nil {
						return
					}
				}

				oc := outcome{path: path}
				oc.mtimeNS, oc.err = shared.Mtime(path)
				if oc.err == nil {
					oc.fp, oc.err = p.analyzer.Analyze(ctx, path)
				}

				select {
				case outcomes <- oc:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	// Collect as completed. When ctx is cancelled the workers exit, the
	// channel closes, and the loop returns the partial map without blocking.
	for oc := range outcomes {
		if oc.err != nil {
			if errors.Is(oc.err, context.Canceled) || errors.Is(oc.err, context.DeadlineExceeded) {
				continue
			}
			p.logger.Warnf("skipping %s: %v", oc.path, oc.err)
			continue
		}
		results[oc.path] = Result{Path: oc.path, Fingerprint: oc.fp, MtimeNS: oc.mtimeNS}
		p.logger.Debugf("analyzed %s", oc.path)
	}

	return results
}
