package lint

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"strings"
	"testing"

	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

func sampleResult() *Result {
	return &Result{
		Files: 2,
		Issues: []Issue{
			{
				Rule:     "no-eval",
				Category: CategorySecurity,
				Level:    LevelError,
				Message:  "eval() is a code injection risk",
				Location: Location{
					Path:     "a.php",
					StartPos: syntax.Position{Line: 3, Column: 1},
					EndPos:   syntax.Position{Line: 3, Column: 12},
				},
				Signature: "abc123",
			},
			{
				Rule:     "no-goto",
				Category: CategoryMaintainability,
				Level:    LevelWarning,
				Message:  "goto makes control flow hard to follow",
				Location: Location{
					Path:     "b.php",
					StartPos: syntax.Position{Line: 10, Column: 5},
				},
				Signature: "def456",
			},
		},
	}
}

func TestNewReporter(t *testing.T) {
	for _, format := range []string{"rich", "short", "json", "checkstyle", "github"} {
		if _, err := NewReporter(format); err != nil {
			t.Errorf("NewReporter(%q): %v", format, err)
		}
	}
	if _, err := NewReporter("yaml"); err == nil || !IsConfigError(err) {
		t.Errorf("NewReporter(yaml) = %v, want configuration error", err)
	}
}

func TestRichReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewRichReporter().Report(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"a.php:3:1: error: eval() is a code injection risk (no-eval)",
		"b.php:10:5: warning: goto makes control flow hard to follow (no-goto)",
		"Found 1 error, 1 warning in 2 file(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRichReporterBaselineCount(t *testing.T) {
	result := sampleResult()
	result.BaselineMatched = 4

	var buf bytes.Buffer
	if err := NewRichReporter().Report(&buf, result); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "4 issue(s) suppressed by baseline") {
		t.Errorf("output missing baseline count:\n%s", buf.String())
	}
}

func TestReportToolDiagnostics(t *testing.T) {
	result := &Result{
		FileErrors: []FileError{{Path: "x.php", Err: errors.New("permission denied")}},
		RuleErrors: []RuleError{{Rule: "buggy", Path: "y.php", Err: errors.New("panic: boom")}},
		StaleBaseline: []BaselineEntry{
			{RuleCode: "old", FilePath: "z.php", Signature: "s"},
		},
	}

	var buf bytes.Buffer
	if err := NewShortReporter().Report(&buf, result); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "tool error: x.php: permission denied") {
		t.Errorf("output missing file error:\n%s", out)
	}
	if !strings.Contains(out, "tool error: rule buggy failed on y.php") {
		t.Errorf("output missing rule error:\n%s", out)
	}
	if !strings.Contains(out, "1 baseline entry no longer match") {
		t.Errorf("output missing stale warning:\n%s", out)
	}
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter().Report(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var payload struct {
		Issues []struct {
			Rule      string `json:"rule"`
			Level     string `json:"level"`
			Line      int    `json:"line"`
			Signature string `json:"signature"`
		} `json:"issues"`
		Summary struct {
			TotalFiles  int            `json:"total_files"`
			TotalIssues int            `json:"total_issues"`
			ByLevel     map[string]int `json:"by_level"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if len(payload.Issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(payload.Issues))
	}
	if payload.Issues[0].Rule != "no-eval" || payload.Issues[0].Line != 3 {
		t.Errorf("first issue = %+v", payload.Issues[0])
	}
	if payload.Issues[0].Signature == "" {
		t.Error("signature missing from JSON output")
	}
	if payload.Summary.TotalFiles != 2 || payload.Summary.ByLevel["error"] != 1 {
		t.Errorf("summary = %+v", payload.Summary)
	}
}

func TestCheckstyleReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCheckstyleReporter().Report(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	var parsed struct {
		XMLName xml.Name `xml:"checkstyle"`
		Files   []struct {
			Name   string `xml:"name,attr"`
			Errors []struct {
				Line     int    `xml:"line,attr"`
				Severity string `xml:"severity,attr"`
				Source   string `xml:"source,attr"`
			} `xml:"error"`
		} `xml:"file"`
	}
	if err := xml.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("invalid XML: %v\n%s", err, out)
	}
	if len(parsed.Files) != 2 {
		t.Fatalf("files = %d, want 2", len(parsed.Files))
	}
	if parsed.Files[0].Errors[0].Severity != "error" || parsed.Files[0].Errors[0].Source != "phplint.no-eval" {
		t.Errorf("first error = %+v", parsed.Files[0].Errors[0])
	}
}

func TestGitHubReporter(t *testing.T) {
	result := sampleResult()
	result.Issues[0].Message = "line one\nline two"

	var buf bytes.Buffer
	if err := NewGitHubReporter().Report(&buf, result); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "::error file=a.php,line=3,col=1") {
		t.Errorf("output missing error annotation:\n%s", out)
	}
	if !strings.Contains(out, "::warning file=b.php,line=10") {
		t.Errorf("output missing warning annotation:\n%s", out)
	}
	if !strings.Contains(out, "line one%0Aline two") {
		t.Errorf("newline not escaped for workflow commands:\n%s", out)
	}
}
