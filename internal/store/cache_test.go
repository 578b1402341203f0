package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/shared"
)

func testFingerprint(dr float64) fingerprint.Fingerprint {
	return fingerprint.Fingerprint{DynamicRange: dr, SpectralRolloff: 4410, SpectralCentroid: 2205, SpectralBandwidth: 880}
}

func TestCache(t *testing.T) {
	t.Run("load missing yields empty cache", func(t *testing.T) {
		cache, err := LoadCache(filepath.Join(t.TempDir(), "cache.json"))
		if err != nil {
			t.Fatalf("LoadCache failed: %v", err)
		}
		if cache.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", cache.Len())
		}
	})

	t.Run("put save load round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")

		cache, err := LoadCache(path)
		if err != nil {
			t.Fatal(err)
		}
		cache.Put("/music/a.mp3", 12345, testFingerprint(1.5))
		if err := cache.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		back, err := LoadCache(path)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		entry, ok := back.Get("/music/a.mp3")
		if !ok {
			t.Fatal("entry missing after reload")
		}
		if entry.MtimeNS != 12345 {
			t.Errorf("mtime = %d, want 12345", entry.MtimeNS)
		}
		if !entry.Fingerprint.Equal(testFingerprint(1.5)) {
			t.Errorf("fingerprint changed on reload: %+v", entry.Fingerprint)
		}
	})

	t.Run("malformed document fails fast", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := LoadCache(path)
		if !errors.Is(err, shared.ErrCorruptDocument) {
			t.Errorf("expected ErrCorruptDocument, got %v", err)
		}
	})

	t.Run("needs processing", func(t *testing.T) {
		tmpDir := t.TempDir()
		file := filepath.Join(tmpDir, "track.mp3")
		if err := os.WriteFile(file, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
		mtime, err := shared.Mtime(file)
		if err != nil {
			t.Fatal(err)
		}

		cache, _ := LoadCache(filepath.Join(tmpDir, "cache.json"))

		if !cache.NeedsProcessing(file) {
			t.Error("uncached file must need processing")
		}

		cache.Put(file, mtime, testFingerprint(1))
		if cache.NeedsProcessing(file) {
			t.Error("unchanged file must not need processing")
		}

		// Bump the modification time; the entry becomes stale.
		later := time.Now().Add(time.Hour)
		if err := os.Chtimes(file, later, later); err != nil {
			t.Fatal(err)
		}
		if !cache.NeedsProcessing(file) {
			t.Error("modified file must need processing")
		}

		cache.Put(filepath.Join(tmpDir, "gone.mp3"), 1, testFingerprint(1))
		if !cache.NeedsProcessing(filepath.Join(tmpDir, "gone.mp3")) {
			t.Error("entry for a missing file must need processing")
		}
	})

	t.Run("prune drops entries for missing files", func(t *testing.T) {
		tmpDir := t.TempDir()
		kept := filepath.Join(tmpDir, "kept.mp3")
		if err := os.WriteFile(kept, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		cache, _ := LoadCache(filepath.Join(tmpDir, "cache.json"))
		cache.Put(kept, 1, testFingerprint(1))
		cache.Put(filepath.Join(tmpDir, "gone1.mp3"), 1, testFingerprint(1))
		cache.Put(filepath.Join(tmpDir, "gone2.mp3"), 1, testFingerprint(1))

		if pruned := cache.Prune(); pruned != 2 {
			t.Errorf("pruned %d entries, want 2", pruned)
		}
		if cache.Len() != 1 {
			t.Errorf("cache has %d entries after prune, want 1", cache.Len())
		}
		if _, ok := cache.Get(kept); !ok {
			t.Error("existing file's entry must survive prune")
		}
	})

	t.Run("stats reflect the saved document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		cache, _ := LoadCache(path)

		stats := cache.Stats()
		if stats.Entries != 0 || stats.SizeBytes != 0 {
			t.Errorf("fresh cache stats = %+v, want zeros", stats)
		}

		cache.Put("/music/a.mp3", 1, testFingerprint(1))
		if err := cache.Save(); err != nil {
			t.Fatal(err)
		}

		stats = cache.Stats()
		if stats.Entries != 1 {
			t.Errorf("entries = %d, want 1", stats.Entries)
		}
		if stats.SizeBytes == 0 {
			t.Error("saved document should have nonzero size")
		}
		if stats.Path != path {
			t.Errorf("path = %s, want %s", stats.Path, path)
		}
	})

	t.Run("clear removes the document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.json")
		cache, _ := LoadCache(path)
		cache.Put("/a", 1, testFingerprint(1))
		if err := cache.Save(); err != nil {
			t.Fatal(err)
		}

		if err := cache.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if cache.Len() != 0 {
			t.Error("cache not emptied")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("document still on disk after Clear")
		}

		// Clearing again is a no-op.
		if err := cache.Clear(); err != nil {
			t.Errorf("second Clear failed: %v", err)
		}
	})
}
