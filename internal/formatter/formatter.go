// package formatter renders session-state documents to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"qualityqueue/internal/store"
)

// ExportToCSV converts a session state to CSV format with columns: Kind, Source, Target
//
// Matched pairs carry both paths, unmatched targets only the target column.
func ExportToCSV(state *store.SessionState) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "Source", "Target"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, src := range sortedMatchKeys(state) {
		record := []string{"matched", src, state.Matched[src]}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, tgt := range state.UnmatchedTarget {
		if err := writer.Write([]string{"unmatched", "", tgt}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a session state to Markdown format
func ExportToMarkdown(state *store.SessionState) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Reconciliation State\n\n")
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n", len(state.Matched)))
	buf.WriteString(fmt.Sprintf("**Unmatched targets**: %d\n", len(state.UnmatchedTarget)))
	buf.WriteString(fmt.Sprintf("**Processed sources**: %d\n\n", len(state.ProcessedSource)))

	if len(state.Matched) > 0 {
		buf.WriteString("## Matched\n\n")
		buf.WriteString("| Source | Target |\n|---|---|\n")
		for _, src := range sortedMatchKeys(state) {
			buf.WriteString(fmt.Sprintf("| %s | %s |\n", src, state.Matched[src]))
		}
		buf.WriteString("\n")
	}

	if len(state.UnmatchedTarget) > 0 {
		buf.WriteString("## Unmatched Targets\n\n")
		for _, tgt := range state.UnmatchedTarget {
			buf.WriteString(fmt.Sprintf("- %s\n", tgt))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a session state to plain text format
func ExportToText(state *store.SessionState) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Matched: %d\n", len(state.Matched)))
	buf.WriteString(fmt.Sprintf("Unmatched targets: %d\n", len(state.UnmatchedTarget)))
	buf.WriteString(fmt.Sprintf("Processed sources: %d\n\n", len(state.ProcessedSource)))

	for i, src := range sortedMatchKeys(state) {
		buf.WriteString(fmt.Sprintf("%d. %s -> %s\n", i+1, src, state.Matched[src]))
	}
	for _, tgt := range state.UnmatchedTarget {
		buf.WriteString(fmt.Sprintf("unmatched: %s\n", tgt))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the session state in its on-disk document shape.
func ExportToJSON(state *store.SessionState) ([]byte, error) {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders state in the named format: json, csv, markdown or text.
func Export(state *store.SessionState, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return ExportToJSON(state)
	case "csv":
		return ExportToCSV(state)
	case "markdown", "md", "table":
		return ExportToMarkdown(state)
	case "text", "txt":
		return ExportToText(state)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

func sortedMatchKeys(state *store.SessionState) []string {
	keys := make([]string, 0, len(state.Matched))
	for src := range state.Matched {
		keys = append(keys, src)
	}
	sort.Strings(keys)
	return keys
}
