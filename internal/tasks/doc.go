// Package tasks orchestrates directory reconciliation: fingerprinting both
// directories, matching source files to target files, and merging.
//
// # Core Operations
//
// The [QueueEngine] drives three operations:
//
//  1. [QueueEngine.Fingerprints] : Produce the {path: fingerprint} map for one
//     directory
//     - Scans for eligible audio files, skipping already-processed basenames
//     - Dispatches only cache-stale files to the worker pool
//     - Merges cache-valid entries in without recomputing them
//  2. [QueueEngine.Match] : Bind source files to target files
//     - Exact fingerprint equality is the only match predicate
//     - First equal target wins, one target per source
//     - Unmatched-target membership carries across runs and only shrinks on
//       match
//  3. [QueueEngine.Merge] : Apply the reconciliation to the target directory
//     - Deletes unmatched targets
//     - Replaces a matched target when the source re-scores strictly higher
//     - Copies sources with no match entry in as new tracks
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values over an optional channel using
// select with default, so reporting never blocks execution.
//
// # Failure Policy
//
// Per-file analysis failures and per-operation copy/delete failures are
// logged and skipped; only document load/save problems propagate. A merge
// re-analysis that fails scores as -1, below any real fingerprint.
package tasks
