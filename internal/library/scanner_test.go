package library

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListCandidates(t *testing.T) {
	exts := []string{".mp3", ".wav"}

	t.Run("filters by extension", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.mp3")
		touch(t, dir, "b.wav")
		touch(t, dir, "c.flac")
		touch(t, dir, "notes.txt")

		got, err := ListCandidates(dir, exts, nil)
		if err != nil {
			t.Fatalf("ListCandidates failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d candidates, want 2: %v", len(got), got)
		}
		// os.ReadDir returns sorted entries.
		if filepath.Base(got[0]) != "a.mp3" || filepath.Base(got[1]) != "b.wav" {
			t.Errorf("unexpected order: %v", got)
		}
	})

	t.Run("extension matching is case-insensitive", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "loud.MP3")

		got, err := ListCandidates(dir, exts, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Errorf("got %d candidates, want 1", len(got))
		}
	})

	t.Run("excluded basenames are skipped", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.mp3")
		touch(t, dir, "b.mp3")

		got, err := ListCandidates(dir, exts, map[string]bool{"a.mp3": true})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || filepath.Base(got[0]) != "b.mp3" {
			t.Errorf("got %v, want only b.mp3", got)
		}
	})

	t.Run("subdirectories are not descended", func(t *testing.T) {
		dir := t.TempDir()
		sub := filepath.Join(dir, "album")
		if err := os.Mkdir(sub, 0755); err != nil {
			t.Fatal(err)
		}
		touch(t, sub, "nested.mp3")

		got, err := ListCandidates(dir, exts, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want no candidates", got)
		}
	})

	t.Run("paths are absolute", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.mp3")

		got, err := ListCandidates(dir, exts, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || !filepath.IsAbs(got[0]) {
			t.Errorf("expected one absolute path, got %v", got)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := ListCandidates(filepath.Join(t.TempDir(), "missing"), exts, nil); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
