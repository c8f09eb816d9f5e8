package lint

import (
	"fmt"

	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// Rule defines a single lint rule.
// Inspired by Go's analysis.Analyzer interface.
type Rule struct {
	// Code is the unique kebab-case identifier (e.g. "no-noop").
	Code string

	// Doc is a one-line description of what this rule checks.
	Doc string

	// URL is an optional link to detailed documentation.
	URL string

	// Category groups related rules.
	Category Category

	// Level is the default severity for issues from this rule.
	Level Level

	// Default reports whether the rule is enabled when the
	// configuration does not mention it.
	Default bool

	// MinPHPVersion is the lowest PHP version whose syntax this rule
	// requires (e.g. "8.0"). Empty means the rule applies to any
	// version. Rules above the configured version are silently skipped.
	MinPHPVersion string

	// Integrations lists framework tags (e.g. "laravel") that enable
	// this rule when the corresponding integration is configured.
	Integrations []string

	// Options declares the rule's configuration schema. Overrides for
	// keys not declared here are a configuration error.
	Options []Option

	// Kinds lists the node kinds the rule wants visited. An empty
	// slice means the rule visits every node.
	Kinds []string

	// Visit is called for each matching node. Issues are reported via
	// pass.Report; the engine fills in the rule's code, category, and
	// effective level.
	Visit func(pass *Pass, node *syntax.Node)
}

// OptionKind is the expected type of a rule option value.
type OptionKind int

const (
	OptionBool OptionKind = iota
	OptionInt
	OptionString
	OptionStringList
)

// String returns a human-readable name for the option kind.
func (k OptionKind) String() string {
	switch k {
	case OptionBool:
		return "bool"
	case OptionInt:
		return "int"
	case OptionString:
		return "string"
	case OptionStringList:
		return "string list"
	default:
		return "unknown"
	}
}

// Option declares one configurable knob on a rule.
type Option struct {
	Name    string
	Kind    OptionKind
	Default any
	Doc     string
}

// OptionSet holds a rule's effective option values: declared defaults
// merged with configuration overrides. Values are type-checked at
// resolve time, so the typed getters never fail at visit time.
type OptionSet map[string]any

// Bool returns the named option as a bool.
func (o OptionSet) Bool(name string) bool {
	v, _ := o[name].(bool)
	return v
}

// Int returns the named option as an int.
func (o OptionSet) Int(name string) int {
	switch v := o[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

// String returns the named option as a string.
func (o OptionSet) String(name string) string {
	v, _ := o[name].(string)
	return v
}

// StringList returns the named option as a list of strings.
func (o OptionSet) StringList(name string) []string {
	switch v := o[name].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Pass provides context to a running rule. Every invocation receives
// its context explicitly; rules never read ambient state.
type Pass struct {
	// Tree is the parsed syntax tree of the file being linted.
	Tree *syntax.Tree

	// Path is the path of the file being linted.
	Path string

	// Level is the effective level for issues from this rule.
	Level Level

	// Options holds the rule's effective options.
	Options OptionSet

	// Report is called to report an issue. The engine stamps the
	// rule's code, category, and effective level onto the issue and
	// validates that its location and fixes lie within the file.
	Report func(Issue)
}

// ReportNode reports an issue whose primary location is the given node.
func (p *Pass) ReportNode(node *syntax.Node, message string, fixes ...Fix) {
	p.Report(Issue{
		Message:  message,
		Location: p.NodeLocation(node),
		Fixes:    fixes,
	})
}

// NodeLocation builds a Location covering the node's range.
func (p *Pass) NodeLocation(node *syntax.Node) Location {
	return p.LocationFor(node.Start(), node.End())
}

// LocationFor builds a Location for an arbitrary byte range in the
// current file.
func (p *Pass) LocationFor(start, end int) Location {
	return Location{
		Path:     p.Path,
		Start:    start,
		End:      end,
		StartPos: p.Tree.PositionAt(start),
		EndPos:   p.Tree.PositionAt(end),
	}
}

// Location is a value-typed source location: a file path plus a byte
// range and its line/column rendering. Locations never reference nodes
// or issues, so related locations cannot form ownership cycles.
type Location struct {
	Path     string
	Start    int
	End      int
	StartPos syntax.Position
	EndPos   syntax.Position
}

// String renders the location as path:line:column.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.Path, l.StartPos.Line, l.StartPos.Column)
}

// Fix is one candidate edit that would resolve an issue: a byte range to
// replace and the replacement text, tagged with a safety classification.
type Fix struct {
	// Start and End delimit the byte range [Start, End) to replace.
	Start int
	End   int

	// Replacement is the new text. Empty deletes the range; Start ==
	// End inserts.
	Replacement string

	// Safety classifies how safe the fix is to apply automatically.
	Safety Safety
}

// Issue is a single finding reported by a rule.
//
// When an issue carries multiple fixes they are alternatives; only the
// first fix at or below the configured safety threshold becomes a
// candidate for application.
type Issue struct {
	// Rule is the code of the rule that produced this issue.
	Rule string

	// Category is the category of the rule.
	Category Category

	// Level is the effective level of this issue.
	Level Level

	// Message is a human-readable description of the issue.
	Message string

	// Location is the primary location.
	Location Location

	// Related lists additional locations relevant to the issue.
	Related []Location

	// Fixes holds zero or more alternative candidate edits.
	Fixes []Fix

	// Signature is the stable identity used for baseline matching.
	// It is stamped by the engine after suppression filtering.
	Signature string
}

// Fixable reports whether the issue carries at least one fix at or
// below the given safety threshold.
func (i *Issue) Fixable(threshold Safety) bool {
	for _, f := range i.Fixes {
		if f.Safety <= threshold {
			return true
		}
	}
	return false
}

// RuleError is a tool diagnostic: a rule implementation faulted while
// visiting a file. It is attributed to the (rule, file) pair and never
// aborts the run.
type RuleError struct {
	Rule string
	Path string
	Err  error
}

func (e RuleError) Error() string {
	return fmt.Sprintf("rule %s failed on %s: %v", e.Rule, e.Path, e.Err)
}

// FileError is a tool diagnostic: a file could not be read or parsed.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Result represents the outcome of linting a set of files.
type Result struct {
	// Files is the number of files that were processed.
	Files int

	// Issues is the list of all issues, in deterministic order.
	Issues []Issue

	// FileErrors lists files that could not be read or parsed.
	FileErrors []FileError

	// RuleErrors lists rule implementations that faulted.
	RuleErrors []RuleError

	// BaselineMatched is the number of issues suppressed by the
	// baseline, when one was applied.
	BaselineMatched int

	// StaleBaseline lists baseline entries with no matching current
	// issue, when a baseline was applied.
	StaleBaseline []BaselineEntry
}

// CountAtOrAbove returns the number of issues at or above min.
func (r *Result) CountAtOrAbove(min Level) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Level.MeetsOrExceeds(min) {
			count++
		}
	}
	return count
}

// HasIssuesAtOrAbove reports whether any issue meets or exceeds min.
func (r *Result) HasIssuesAtOrAbove(min Level) bool {
	return r.CountAtOrAbove(min) > 0
}

// CountByLevel returns the number of issues at exactly the given level.
func (r *Result) CountByLevel(level Level) int {
	count := 0
	for _, issue := range r.Issues {
		if issue.Level == level {
			count++
		}
	}
	return count
}
