package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Operation phase enumeration
type Phase int

const (
	ScanDirectory Phase = iota
	AnalyzeFiles
	MatchTracks
	MergeDeletes
	MergePairs
	MergeAdds
)

func (p Phase) String() string {
	switch p {
	case ScanDirectory:
		return "scan_directory"
	case AnalyzeFiles:
		return "analyze_files"
	case MatchTracks:
		return "match_tracks"
	case MergeDeletes:
		return "merge_deletes"
	case MergePairs:
		return "merge_pairs"
	case MergeAdds:
		return "merge_adds"
	default:
		return fmt.Sprintf("phase_%d", int(p))
	}
}
