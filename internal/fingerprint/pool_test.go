package fingerprint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"qualityqueue/internal/shared"
)

// fakeAnalyzer returns canned fingerprints per basename and counts calls.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int

	fingerprints map[string]Fingerprint
	failures     map[string]error

	// cancelAfter, when positive, cancels the batch context at the start of
	// call number cancelAfter+1.
	cancelAfter int
	cancel      context.CancelFunc
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, path string) (Fingerprint, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.cancelAfter > 0 && n > f.cancelAfter {
		f.cancel()
		return Fingerprint{}, ctx.Err()
	}

	name := filepath.Base(path)
	if err, ok := f.failures[name]; ok {
		return Fingerprint{}, err
	}
	if fp, ok := f.fingerprints[name]; ok {
		return fp, nil
	}
	return Fingerprint{DynamicRange: 1}, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// touchFiles creates n empty files and returns their paths.
func touchFiles(t *testing.T, dir string, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("track%02d.mp3", i))
		if err := os.WriteFile(paths[i], []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func discardPool(a Analyzer, opts PoolOpts) *Pool {
	return NewPool(a, opts, shared.NewLogger(io.Discard))
}

func TestPoolAnalyzeBatch(t *testing.T) {
	t.Run("collects all results", func(t *testing.T) {
		paths := touchFiles(t, t.TempDir(), 6)
		fa := &fakeAnalyzer{}
		pool := discardPool(fa, PoolOpts{Workers: 3})

		results := pool.AnalyzeBatch(context.Background(), paths)

		if len(results) != 6 {
			t.Fatalf("got %d results, want 6", len(results))
		}
		for _, p := range paths {
			r, ok := results[p]
			if !ok {
				t.Errorf("missing result for %s", p)
				continue
			}
			if r.Path != p {
				t.Errorf("result path = %s, want %s", r.Path, p)
			}
			if r.MtimeNS == 0 {
				t.Errorf("result for %s has no mtime", p)
			}
		}
		if fa.callCount() != 6 {
			t.Errorf("analyzer called %d times, want 6", fa.callCount())
		}
	})

	t.Run("per-file failure is omitted, never fatal", func(t *testing.T) {
		paths := touchFiles(t, t.TempDir(), 4)
		fa := &fakeAnalyzer{
			failures: map[string]error{
				"track01.mp3": fmt.Errorf("%w: corrupt", shared.ErrDecode),
			},
		}
		pool := discardPool(fa, PoolOpts{Workers: 2})

		results := pool.AnalyzeBatch(context.Background(), paths)

		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		if _, ok := results[paths[1]]; ok {
			t.Error("failed file must be omitted from the result map")
		}
	})

	t.Run("missing file is omitted", func(t *testing.T) {
		dir := t.TempDir()
		paths := touchFiles(t, dir, 2)
		paths = append(paths, filepath.Join(dir, "ghost.mp3"))

		pool := discardPool(&fakeAnalyzer{}, PoolOpts{Workers: 2})
		results := pool.AnalyzeBatch(context.Background(), paths)

		if len(results) != 2 {
			t.Errorf("got %d results, want 2", len(results))
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		pool := discardPool(&fakeAnalyzer{}, PoolOpts{})
		if results := pool.AnalyzeBatch(context.Background(), nil); len(results) != 0 {
			t.Errorf("expected empty map, got %v", results)
		}
	})

	t.Run("cancellation returns completed subset", func(t *testing.T) {
		paths := touchFiles(t, t.TempDir(), 8)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		fa := &fakeAnalyzer{cancelAfter: 2, cancel: cancel}
		// Single worker makes completion order deterministic.
		pool := discardPool(fa, PoolOpts{Workers: 1})

		results := pool.AnalyzeBatch(ctx, paths)

		if len(results) != 2 {
			t.Fatalf("got %d results after cancellation, want exactly 2", len(results))
		}
		// The third call observed the cancellation; nothing beyond it was dispatched.
		if fa.callCount() > 3 {
			t.Errorf("analyzer called %d times after cancellation, want at most 3", fa.callCount())
		}
	})

	t.Run("pre-cancelled context dispatches nothing", func(t *testing.T) {
		paths := touchFiles(t, t.TempDir(), 4)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fa := &fakeAnalyzer{}
		pool := discardPool(fa, PoolOpts{Workers: 2})

		results := pool.AnalyzeBatch(ctx, paths)
		if len(results) != 0 {
			t.Errorf("got %d results from a cancelled batch, want 0", len(results))
		}
	})
}
