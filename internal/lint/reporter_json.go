package lint

import (
	"encoding/json"
	"io"
)

// JSONReporter outputs issues in JSON format for CI integration.
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// jsonOutput represents the root JSON structure.
type jsonOutput struct {
	Issues  []jsonIssue `json:"issues"`
	Summary jsonSummary `json:"summary"`
}

// jsonIssue represents a single lint issue.
type jsonIssue struct {
	Rule      string         `json:"rule"`
	Category  string         `json:"category"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	File      string         `json:"file"`
	Line      int            `json:"line"`
	Column    int            `json:"column"`
	EndLine   int            `json:"end_line,omitempty"`
	EndColumn int            `json:"end_column,omitempty"`
	Signature string         `json:"signature"`
	Fixable   bool           `json:"fixable"`
	Related   []jsonLocation `json:"related,omitempty"`
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// jsonSummary represents summary statistics.
type jsonSummary struct {
	TotalFiles      int             `json:"total_files"`
	TotalIssues     int             `json:"total_issues"`
	ByLevel         map[string]int  `json:"by_level"`
	ByRule          map[string]int  `json:"by_rule"`
	BaselineMatched int             `json:"baseline_matched,omitempty"`
	StaleBaseline   int             `json:"stale_baseline,omitempty"`
	ToolErrors      []jsonToolError `json:"tool_errors,omitempty"`
}

// jsonToolError represents a per-file or per-rule tool failure.
type jsonToolError struct {
	File    string `json:"file"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

// Report implements the Reporter interface for JSON output.
func (r *JSONReporter) Report(w io.Writer, result *Result) error {
	out := jsonOutput{
		Issues: make([]jsonIssue, 0, len(result.Issues)),
		Summary: jsonSummary{
			TotalFiles:      result.Files,
			TotalIssues:     len(result.Issues),
			ByLevel:         make(map[string]int),
			ByRule:          make(map[string]int),
			BaselineMatched: result.BaselineMatched,
			StaleBaseline:   len(result.StaleBaseline),
		},
	}

	for _, issue := range result.Issues {
		ji := jsonIssue{
			Rule:      issue.Rule,
			Category:  string(issue.Category),
			Level:     issue.Level.String(),
			Message:   issue.Message,
			File:      issue.Location.Path,
			Line:      issue.Location.StartPos.Line,
			Column:    issue.Location.StartPos.Column,
			EndLine:   issue.Location.EndPos.Line,
			EndColumn: issue.Location.EndPos.Column,
			Signature: issue.Signature,
			Fixable:   len(issue.Fixes) > 0,
		}
		for _, related := range issue.Related {
			ji.Related = append(ji.Related, jsonLocation{
				File:   related.Path,
				Line:   related.StartPos.Line,
				Column: related.StartPos.Column,
			})
		}
		out.Issues = append(out.Issues, ji)
		out.Summary.ByLevel[issue.Level.String()]++
		out.Summary.ByRule[issue.Rule]++
	}

	for _, fileErr := range result.FileErrors {
		out.Summary.ToolErrors = append(out.Summary.ToolErrors, jsonToolError{
			File:    fileErr.Path,
			Message: fileErr.Err.Error(),
		})
	}
	for _, ruleErr := range result.RuleErrors {
		out.Summary.ToolErrors = append(out.Summary.ToolErrors, jsonToolError{
			File:    ruleErr.Path,
			Rule:    ruleErr.Rule,
			Message: ruleErr.Err.Error(),
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
