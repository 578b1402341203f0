package ui

import (
	"fmt"
	"io"
	"time"

	"qualityqueue/internal/tasks"
)

// RunSummary aggregates the figures of one reconciliation run for display.
type RunSummary struct {
	RunID        string
	SourceDir    string
	TargetDir    string
	SourceTracks int
	TargetTracks int
	Matched      int
	Unmatched    int
	DryRun       bool
	Merge        *tasks.MergeStats // nil when merge was not requested
	Elapsed      time.Duration
}

// RenderSummary writes a styled end-of-run report.
func RenderSummary(w io.Writer, s RunSummary) {
	title := "Reconciliation complete"
	if s.DryRun {
		title = "Reconciliation complete (dry run)"
	}
	fmt.Fprintln(w, styles.title.Render(title))

	fmt.Fprintf(w, "  %s %d tracks in %s\n", styles.ok.Render("Source:"), s.SourceTracks, s.SourceDir)
	fmt.Fprintf(w, "  %s %d tracks in %s\n", styles.ok.Render("Target:"), s.TargetTracks, s.TargetDir)
	fmt.Fprintf(w, "  %s %d\n", styles.ok.Render("Matched:"), s.Matched)

	unmatched := styles.ok
	if s.Unmatched > 0 {
		unmatched = styles.warn
	}
	fmt.Fprintf(w, "  %s %d\n", unmatched.Render("Unmatched targets:"), s.Unmatched)

	if s.Merge != nil {
		fmt.Fprintf(w, "  %s deleted %d, replaced %d, kept %d, added %d\n",
			styles.ok.Render("Merge:"), s.Merge.Deleted, s.Merge.Replaced, s.Merge.Kept, s.Merge.Added)
		if s.Merge.Failed > 0 {
			fmt.Fprintf(w, "  %s %d operations failed, see the log\n", styles.err.Render("Failures:"), s.Merge.Failed)
		}
	}

	fmt.Fprintln(w, styles.help.Render(fmt.Sprintf("run %s finished in %s", s.RunID, s.Elapsed.Round(time.Millisecond))))
}

// RenderProgress writes a one-line progress message.
func RenderProgress(w io.Writer, update tasks.ProgressUpdate) {
	if update.Message == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", styles.help.Render(fmt.Sprintf("[%s]", update.Phase)), update.Message)
}
