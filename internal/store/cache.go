// Package store persists the two on-disk documents qualityqueue maintains:
// the installation-wide fingerprint cache and the per-directory-pair session
// state. Both are plain JSON, written atomically (temp file + rename) under an
// advisory file lock so concurrent invocations cannot corrupt them. Workers
// never touch either document; only the coordinating flow loads and saves.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/shared"
)

// CacheEntry records the last-known modification time and fingerprint for one
// file. The entry is reusable iff the file's current modification time still
// equals MtimeNS; equal timestamps mean unchanged.
type CacheEntry struct {
	MtimeNS     int64                   `json:"mtime"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
}

// Cache is the in-memory form of the fingerprint cache document, keyed by
// absolute file path. One document exists per installation, not per
// directory pair.
type Cache struct {
	path    string
	entries map[string]CacheEntry
}

// LoadCache reads the cache document at path. A missing file yields an empty
// cache; malformed JSON is a fatal [shared.ErrCorruptDocument].
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: map[string]CacheEntry{}}

	data, err := readLocked(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptDocument, path, err)
	}
	return c, nil
}

// Get returns the entry for path, if present.
func (c *Cache) Get(path string) (CacheEntry, bool) {
	entry, ok := c.entries[path]
	return entry, ok
}

// Put records a freshly computed fingerprint and the modification time it was
// computed against.
func (c *Cache) Put(path string, mtimeNS int64, fp fingerprint.Fingerprint) {
	c.entries[path] = CacheEntry{MtimeNS: mtimeNS, Fingerprint: fp}
}

// NeedsProcessing reports whether path must be (re)fingerprinted: true when no
// entry exists, when the file cannot be inspected, or when the stored
// modification time differs from the current one.
func (c *Cache) NeedsProcessing(path string) bool {
	entry, ok := c.entries[path]
	if !ok {
		return true
	}
	current, err := shared.Mtime(path)
	if err != nil {
		return true
	}
	return current != entry.MtimeNS
}

// CacheStats summarizes the cache document.
type CacheStats struct {
	Path      string `json:"path"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
}

// Stats reports the document location, entry count and on-disk size. A cache
// never saved has size zero.
func (c *Cache) Stats() CacheStats {
	stats := CacheStats{Path: c.path, Entries: len(c.entries)}
	if info, err := os.Stat(c.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats
}

// Entries returns a copy of the cache contents keyed by absolute path.
func (c *Cache) Entries() map[string]CacheEntry {
	out := make(map[string]CacheEntry, len(c.entries))
	for path, entry := range c.entries {
		out[path] = entry
	}
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Prune removes entries whose files no longer exist and returns how many were
// dropped. The document on disk is untouched until Save.
func (c *Cache) Prune() int {
	pruned := 0
	for path := range c.entries {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			delete(c.entries, path)
			pruned++
		}
	}
	return pruned
}

// Save writes the cache document atomically under the file lock.
func (c *Cache) Save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}
	if err := writeLocked(c.path, data); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}
	return nil
}

// Clear empties the cache and removes the document from disk. A missing
// document is a no-op.
func (c *Cache) Clear() error {
	c.entries = map[string]CacheEntry{}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}
	return nil
}

// readLocked reads a document while holding its advisory lock.
func readLocked(path string) ([]byte, error) {
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return nil, err
	}
	defer fl.Unlock()

	return os.ReadFile(path)
}

// writeLocked writes a document atomically (temp file + rename) while holding
// its advisory lock.
func writeLocked(path string, data []byte) error {
	fl := flock.New(path + ".lock")
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
