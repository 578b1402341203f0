package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"qualityqueue/internal/fingerprint"
	"qualityqueue/internal/shared"
)

// SessionState is the persisted per-(source, target) reconciliation document.
// It survives across invocations: matched pairs and unmatched targets carry
// forward, and processed source basenames are skipped on later runs.
type SessionState struct {
	// Matched maps source path to the target path it was bound to by exact
	// fingerprint equality. At most one target per source.
	Matched map[string]string `json:"matched"`

	// UnmatchedTarget lists target paths with no matching source, kept sorted
	// for stable documents across runs.
	UnmatchedTarget []string `json:"unmatched_target"`

	// ProcessedSource maps source basenames to their fingerprints, used to
	// skip re-fingerprinting source files already known.
	ProcessedSource map[string]fingerprint.Fingerprint `json:"processed_source"`
}

// NewSessionState returns an empty document with all three fields initialized.
func NewSessionState() *SessionState {
	return &SessionState{
		Matched:         map[string]string{},
		UnmatchedTarget: []string{},
		ProcessedSource: map[string]fingerprint.Fingerprint{},
	}
}

// StatePath derives the session document location for a (source, target)
// pair: "<source base>_<target base>.json" inside dataDir, unless an explicit
// override path is given.
func StatePath(dataDir, source, target, override string) string {
	if override != "" {
		return override
	}
	name := fmt.Sprintf("%s_%s.json", filepath.Base(source), filepath.Base(target))
	return filepath.Join(dataDir, name)
}

// LoadState reads the session document at path. A missing file yields a fresh
// empty document; malformed JSON is a fatal [shared.ErrCorruptDocument]. The
// loaded document is normalized so the matched/unmatched invariant holds even
// after manual edits.
func LoadState(path string) (*SessionState, error) {
	data, err := readLocked(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewSessionState(), nil
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}

	state := NewSessionState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptDocument, path, err)
	}
	state.Normalize()
	return state, nil
}

// Save writes the document atomically under its file lock. Called exactly
// once per run, after reconciliation.
func (s *SessionState) Save(path string) error {
	s.Normalize()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}
	if err := writeLocked(path, data); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrDocumentIO, err)
	}
	return nil
}

// Normalize re-establishes the document invariant: maps are non-nil, the
// unmatched list is deduplicated and sorted, and no matched target appears in
// the unmatched list. Run on every load rather than trusted to persist.
func (s *SessionState) Normalize() {
	if s.Matched == nil {
		s.Matched = map[string]string{}
	}
	if s.ProcessedSource == nil {
		s.ProcessedSource = map[string]fingerprint.Fingerprint{}
	}

	matched := s.MatchedTargets()
	set := make(map[string]struct{}, len(s.UnmatchedTarget))
	for _, path := range s.UnmatchedTarget {
		if _, isMatched := matched[path]; isMatched {
			continue
		}
		set[path] = struct{}{}
	}
	s.SetUnmatched(set)
}

// MatchedTargets returns the set of target paths currently bound to a source.
func (s *SessionState) MatchedTargets() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Matched))
	for _, target := range s.Matched {
		out[target] = struct{}{}
	}
	return out
}

// UnmatchedSet returns the unmatched targets as a set for mutation during
// reconciliation.
func (s *SessionState) UnmatchedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(s.UnmatchedTarget))
	for _, path := range s.UnmatchedTarget {
		out[path] = struct{}{}
	}
	return out
}

// SetUnmatched replaces the unmatched list with the given set, sorted.
func (s *SessionState) SetUnmatched(set map[string]struct{}) {
	out := make([]string, 0, len(set))
	for path := range set {
		out = append(out, path)
	}
	sort.Strings(out)
	s.UnmatchedTarget = out
}

// ProcessedNames returns the processed-source basenames as a lookup set.
func (s *SessionState) ProcessedNames() map[string]bool {
	out := make(map[string]bool, len(s.ProcessedSource))
	for name := range s.ProcessedSource {
		out[name] = true
	}
	return out
}
