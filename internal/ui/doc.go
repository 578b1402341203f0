// Package ui renders terminal output for the CLI with [lipgloss] styles.
//
// It holds a small [Palette] of named styles and the end-of-run report:
// [RenderSummary] prints the reconciliation figures, [RenderProgress] prints
// phase messages as they arrive from the engine's progress channel.
package ui
