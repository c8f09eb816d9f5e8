package lint

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Reporter formats and outputs lint results.
type Reporter interface {
	// Report writes the lint results to the writer.
	Report(w io.Writer, result *Result) error
}

// NewReporter returns the reporter for a format name.
func NewReporter(format string) (Reporter, error) {
	switch format {
	case "rich":
		return NewRichReporter(), nil
	case "short":
		return NewShortReporter(), nil
	case "json":
		return NewJSONReporter(), nil
	case "checkstyle":
		return NewCheckstyleReporter(), nil
	case "github":
		return NewGitHubReporter(), nil
	default:
		return nil, configErrorf("unknown format: %s (must be one of: rich, short, json, checkstyle, github)", format)
	}
}

// RichReporter outputs issues in human-readable text format with
// optional severity coloring.
type RichReporter struct {
	// Color enables ANSI severity coloring.
	Color bool

	// ShowRule includes the rule code in the output.
	ShowRule bool
}

// NewRichReporter creates a rich reporter with default settings.
func NewRichReporter() *RichReporter {
	return &RichReporter{ShowRule: true}
}

// Report implements the Reporter interface for rich text output.
func (r *RichReporter) Report(w io.Writer, result *Result) error {
	var currentFile string
	for _, issue := range result.Issues {
		if issue.Location.Path != currentFile {
			if currentFile != "" {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			currentFile = issue.Location.Path
		}
		if err := r.reportIssue(w, issue); err != nil {
			return err
		}
	}

	if err := reportToolDiagnostics(w, result); err != nil {
		return err
	}

	if len(result.Issues) > 0 {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	r.reportSummary(w, result)
	return nil
}

// reportIssue outputs a single issue.
func (r *RichReporter) reportIssue(w io.Writer, issue Issue) error {
	parts := []string{
		issue.Location.String() + ":",
		r.formatLevel(issue.Level),
		issue.Message,
	}
	if r.ShowRule && issue.Rule != "" {
		parts = append(parts, fmt.Sprintf("(%s)", issue.Rule))
	}
	if _, err := fmt.Fprintln(w, strings.Join(parts, " ")); err != nil {
		return err
	}

	for _, related := range issue.Related {
		if _, err := fmt.Fprintf(w, "    related: %s\n", related.String()); err != nil {
			return err
		}
	}
	return nil
}

// formatLevel renders the level tag, colored when enabled.
func (r *RichReporter) formatLevel(level Level) string {
	tag := level.String() + ":"
	if !r.Color {
		return tag
	}
	switch level {
	case LevelError:
		return color.New(color.FgRed).Sprint(tag)
	case LevelWarning:
		return color.New(color.FgYellow).Sprint(tag)
	case LevelHelp:
		return color.New(color.FgCyan).Sprint(tag)
	case LevelNote:
		return color.New(color.FgHiBlack).Sprint(tag)
	default:
		return tag
	}
}

// reportSummary outputs counts by level.
func (r *RichReporter) reportSummary(w io.Writer, result *Result) {
	var parts []string
	for _, level := range []Level{LevelError, LevelWarning, LevelHelp, LevelNote} {
		if count := result.CountByLevel(level); count > 0 {
			label := level.String()
			if count != 1 {
				label += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", count, label))
		}
	}
	if len(parts) > 0 {
		_, _ = fmt.Fprintf(w, "Found %s in %d file(s)\n", strings.Join(parts, ", "), result.Files)
	}
	if result.BaselineMatched > 0 {
		_, _ = fmt.Fprintf(w, "%d issue(s) suppressed by baseline\n", result.BaselineMatched)
	}
}

// ShortReporter outputs one issue per line with no summary.
// Format: file:line:column: level: message (rule)
type ShortReporter struct{}

// NewShortReporter creates a new short reporter.
func NewShortReporter() *ShortReporter {
	return &ShortReporter{}
}

// Report implements the Reporter interface for short output.
func (r *ShortReporter) Report(w io.Writer, result *Result) error {
	for _, issue := range result.Issues {
		line := fmt.Sprintf("%s: %s: %s", issue.Location.String(), issue.Level, issue.Message)
		if issue.Rule != "" {
			line += fmt.Sprintf(" (%s)", issue.Rule)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return reportToolDiagnostics(w, result)
}

// reportToolDiagnostics prints per-file and per-rule errors, tagged
// distinctly from lint issues so they are not mistaken for
// code-quality findings, followed by any stale-baseline warning.
func reportToolDiagnostics(w io.Writer, result *Result) error {
	for _, fileErr := range result.FileErrors {
		if _, err := fmt.Fprintf(w, "tool error: %s: %v\n", fileErr.Path, fileErr.Err); err != nil {
			return err
		}
	}
	for _, ruleErr := range result.RuleErrors {
		if _, err := fmt.Fprintf(w, "tool error: rule %s failed on %s: %v\n", ruleErr.Rule, ruleErr.Path, ruleErr.Err); err != nil {
			return err
		}
	}
	if len(result.StaleBaseline) > 0 {
		if _, err := fmt.Fprintf(w, "warning: %d baseline entr%s no longer match any issue; regenerate the baseline with --generate-baseline\n",
			len(result.StaleBaseline), pluralY(len(result.StaleBaseline))); err != nil {
			return err
		}
	}
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
