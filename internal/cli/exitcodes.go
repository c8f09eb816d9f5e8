// Package cli provides shared utilities for the phplint command line tool.
package cli

// Standard exit codes for phplint.
//
// These follow Unix conventions, with one twist required by baseline and
// CI workflows: "the code has lint issues" and "the tool itself failed"
// must be distinguishable:
//   - 0: Success, no reportable issues
//   - 1: Fatal error (bad configuration, unreadable baseline, tool bug)
//   - 2: Lint issues found at or above the failure threshold
const (
	// ExitOK indicates successful execution with no issues at or above
	// the configured failure level.
	ExitOK = 0

	// ExitError indicates a fatal error occurred (configuration error,
	// malformed baseline, I/O failure preventing the run).
	ExitError = 1

	// ExitIssues indicates the run completed and found lint issues at or
	// above the minimum failure level.
	ExitIssues = 2
)
