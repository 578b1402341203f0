// Package library scans directories for eligible audio files.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListCandidates returns the absolute paths of eligible audio files directly
// inside dir, sorted by name. A file is eligible when its extension is in
// extensions (case-insensitive) and its basename is not in excluded.
// Subdirectories are not descended into.
func ListCandidates(dir string, extensions []string, excluded map[string]bool) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !extSet[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if excluded[name] {
			continue
		}
		out = append(out, filepath.Join(abs, name))
	}
	return out, nil
}
