package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/dustin/go-humanize"

	"qualityqueue/internal/library"
	"qualityqueue/internal/shared"
	"qualityqueue/internal/store"
)

// MergeStats summarizes the side effects of a merge pass.
type MergeStats struct {
	Deleted  int // Unmatched targets removed
	Replaced int // Matched targets overwritten by a higher-scoring source
	Kept     int // Matched targets left untouched
	Added    int // Sources copied in as new tracks
	Failed   int // Operations that errored and were skipped
}

// Merge applies the reconciliation decisions to the target directory:
//
//  1. Every unmatched target is deleted.
//  2. Every matched pair is re-analyzed fresh (the cache is bypassed; merge
//     decisions take correctness over reuse) and the source is copied over
//     the target iff its score is strictly higher. A failed re-analysis
//     scores -1, below any real fingerprint.
//  3. Every source with no match entry is copied into the target directory
//     under its own basename.
//
// Each operation is independently failure-tolerant: an error is logged and
// counted, and processing continues. With dryRun set, decisions are logged
// but nothing is touched.
func (e *QueueEngine) Merge(ctx context.Context, sourceDir, targetDir string, state *store.SessionState, dryRun bool, progress chan<- ProgressUpdate) MergeStats {
	var stats MergeStats

	e.sendProgress(progress, ProgressUpdate{
		Phase:   MergeDeletes,
		Total:   len(state.UnmatchedTarget),
		Message: fmt.Sprintf("deleting %d unmatched tracks", len(state.UnmatchedTarget)),
	})
	for _, track := range state.UnmatchedTarget {
		size := humanize.Bytes(uint64(shared.FileSize(track)))
		if dryRun {
			e.logger.Infof("would delete unmatched track %s (%s)", track, size)
			stats.Deleted++
			continue
		}
		e.logger.Debugf("deleting unmatched track %s (%s)", track, size)
		if err := os.Remove(track); err != nil {
			e.logger.Errorf("could not delete %s: %v", track, err)
			stats.Failed++
			continue
		}
		stats.Deleted++
	}

	pairs := make([]string, 0, len(state.Matched))
	for src := range state.Matched {
		pairs = append(pairs, src)
	}
	sort.Strings(pairs)

	e.sendProgress(progress, ProgressUpdate{
		Phase:   MergePairs,
		Total:   len(pairs),
		Message: fmt.Sprintf("comparing %d matched pairs", len(pairs)),
	})
	for i, src := range pairs {
		if ctx.Err() != nil {
			e.logger.Warn("merge interrupted, remaining pairs skipped")
			return stats
		}
		dest := state.Matched[src]

		srcScore := e.rescore(ctx, src)
		dstScore := e.rescore(ctx, dest)

		if srcScore > dstScore {
			if dryRun {
				e.logger.Infof("would replace %s (%.2f) with %s (%.2f)", dest, dstScore, src, srcScore)
			} else {
				e.logger.Debugf("replacing lower-quality track %s (%.2f < %.2f)", dest, dstScore, srcScore)
				if err := shared.CopyFile(src, dest); err != nil {
					e.logger.Errorf("could not replace %s: %v", dest, err)
					stats.Failed++
					continue
				}
			}
			stats.Replaced++
		} else {
			e.logger.Debugf("keeping higher-quality track %s (%.2f >= %.2f)", dest, dstScore, srcScore)
			stats.Kept++
		}
		e.sendProgress(progress, ProgressUpdate{Phase: MergePairs, Step: i + 1, Total: len(pairs)})
	}

	candidates, err := library.ListCandidates(sourceDir, e.extensions, nil)
	if err != nil {
		e.logger.Errorf("could not scan %s for new tracks: %v", sourceDir, err)
		stats.Failed++
		return stats
	}

	e.sendProgress(progress, ProgressUpdate{
		Phase:   MergeAdds,
		Total:   len(candidates),
		Message: "copying new tracks",
	})
	for _, src := range candidates {
		if ctx.Err() != nil {
			e.logger.Warn("merge interrupted, remaining copies skipped")
			return stats
		}
		if _, matched := state.Matched[src]; matched {
			continue
		}
		dest := filepath.Join(targetDir, filepath.Base(src))
		if dryRun {
			e.logger.Infof("would copy new track %s (%s)", dest, humanize.Bytes(uint64(shared.FileSize(src))))
			stats.Added++
			continue
		}
		e.logger.Debugf("copying new track to %s", dest)
		if err := shared.CopyFile(src, dest); err != nil {
			e.logger.Errorf("could not copy %s: %v", src, err)
			stats.Failed++
			continue
		}
		stats.Added++
	}

	return stats
}

// rescore analyzes a file fresh and returns its quality score, or the -1
// sentinel when analysis fails.
func (e *QueueEngine) rescore(ctx context.Context, path string) float64 {
	fp, err := e.analyzer.Analyze(ctx, path)
	if err != nil {
		e.logger.Warnf("re-analysis of %s failed, scoring as -1: %v", path, err)
		return e.weights.ScoreOrSentinel(nil)
	}
	return e.weights.ScoreOrSentinel(&fp)
}
