package lint

import (
	"encoding/xml"
	"fmt"
	"io"
)

// CheckstyleReporter outputs issues in checkstyle XML format, consumed
// by most CI annotation plugins.
type CheckstyleReporter struct{}

// NewCheckstyleReporter creates a new checkstyle reporter.
func NewCheckstyleReporter() *CheckstyleReporter {
	return &CheckstyleReporter{}
}

type checkstyleFile struct {
	XMLName xml.Name          `xml:"file"`
	Name    string            `xml:"name,attr"`
	Errors  []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

type checkstyleOutput struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

// Report implements the Reporter interface for checkstyle output.
func (r *CheckstyleReporter) Report(w io.Writer, result *Result) error {
	out := checkstyleOutput{Version: "4.3"}

	var current *checkstyleFile
	for _, issue := range result.Issues {
		if current == nil || current.Name != issue.Location.Path {
			out.Files = append(out.Files, checkstyleFile{Name: issue.Location.Path})
			current = &out.Files[len(out.Files)-1]
		}
		current.Errors = append(current.Errors, checkstyleError{
			Line:     issue.Location.StartPos.Line,
			Column:   issue.Location.StartPos.Column,
			Severity: checkstyleSeverity(issue.Level),
			Message:  issue.Message,
			Source:   "phplint." + issue.Rule,
		})
	}

	if _, err := fmt.Fprintln(w, xml.Header[:len(xml.Header)-1]); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

// checkstyleSeverity maps lint levels onto checkstyle's three-level
// scheme.
func checkstyleSeverity(level Level) string {
	switch level {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	default:
		return "info"
	}
}
