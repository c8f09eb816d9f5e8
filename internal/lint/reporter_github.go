package lint

import (
	"fmt"
	"io"
	"strings"
)

// GitHubReporter outputs issues in GitHub Actions annotation format.
// Format: ::warning file={file},line={line},col={col}::{message}
type GitHubReporter struct{}

// NewGitHubReporter creates a new GitHub Actions reporter.
func NewGitHubReporter() *GitHubReporter {
	return &GitHubReporter{}
}

// Report implements the Reporter interface for GitHub Actions output.
func (r *GitHubReporter) Report(w io.Writer, result *Result) error {
	for _, issue := range result.Issues {
		location := fmt.Sprintf("file=%s,line=%d", issue.Location.Path, issue.Location.StartPos.Line)
		if issue.Location.StartPos.Column > 0 {
			location += fmt.Sprintf(",col=%d", issue.Location.StartPos.Column)
		}
		if end := issue.Location.EndPos.Line; end > issue.Location.StartPos.Line {
			location += fmt.Sprintf(",endLine=%d", end)
		}
		title := fmt.Sprintf("%s (%s)", issue.Rule, issue.Category)

		if _, err := fmt.Fprintf(w, "::%s %s,title=%s::%s\n",
			githubLevel(issue.Level), location, title, escapeGitHubMessage(issue.Message)); err != nil {
			return err
		}
	}

	for _, fileErr := range result.FileErrors {
		if _, err := fmt.Fprintf(w, "::error file=%s::Failed to process file: %v\n",
			fileErr.Path, fileErr.Err); err != nil {
			return err
		}
	}
	return nil
}

// githubLevel maps lint levels onto GitHub's annotation levels.
func githubLevel(level Level) string {
	switch level {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "notice"
	}
}

// escapeGitHubMessage escapes characters with meaning in workflow
// commands.
func escapeGitHubMessage(msg string) string {
	replacer := strings.NewReplacer(
		"%", "%25",
		"\r", "%0D",
		"\n", "%0A",
	)
	return replacer.Replace(msg)
}
