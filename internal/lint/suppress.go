package lint

import (
	"strings"
)

// SuppressionType represents the type of suppression comment.
type SuppressionType int

const (
	// SuppressionNone indicates no suppression.
	SuppressionNone SuppressionType = iota

	// SuppressionLine suppresses rules on the current line.
	// Format: // phplint: disable=rule-code
	SuppressionLine

	// SuppressionNextLine suppresses rules on the next line.
	// Format: // phplint: disable-next-line=rule-code
	SuppressionNextLine

	// SuppressionInline suppresses rules on the same line as code.
	// Format: do_thing(); // phplint: disable=rule-code
	SuppressionInline
)

// Suppression represents a directive parsed from a comment.
type Suppression struct {
	// Type is the type of suppression (line, next-line, inline).
	Type SuppressionType

	// Rules is the list of rule codes to suppress.
	// An empty list means suppress all rules.
	Rules []string

	// Line is the 1-based line number where the suppression appears.
	Line int
}

// SuppressionParser parses suppression directives from PHP source.
// Both // and # comment styles are recognized.
type SuppressionParser struct {
	suppressions map[int][]Suppression
}

// NewSuppressionParser scans the source content for directives.
func NewSuppressionParser(content []byte) *SuppressionParser {
	parser := &SuppressionParser{suppressions: make(map[int][]Suppression)}

	for lineIdx, line := range strings.Split(string(content), "\n") {
		lineNum := lineIdx + 1
		if supps := parseLineForSuppressions(line, lineNum); len(supps) > 0 {
			parser.suppressions[lineNum] = supps
		}
	}
	return parser
}

// parseLineForSuppressions extracts all directives from a line.
func parseLineForSuppressions(line string, lineNum int) []Suppression {
	commentIdx := commentStart(line)
	if commentIdx == -1 {
		return nil
	}
	comment := line[commentIdx:]
	if !strings.Contains(comment, "phplint:") {
		return nil
	}

	var suppressions []Suppression
	// disable-next-line must be checked first: "disable=" is a prefix
	// of neither, but a plain "disable=" scan would also match inside
	// "disable-next-line=".
	if supp := parseDirective(comment, "disable-next-line=", lineNum); supp != nil {
		supp.Type = SuppressionNextLine
		suppressions = append(suppressions, *supp)
		return suppressions
	}
	if supp := parseDirective(comment, "disable=", lineNum); supp != nil {
		if hasCodeBefore(line, commentIdx) {
			supp.Type = SuppressionInline
		} else {
			supp.Type = SuppressionLine
		}
		suppressions = append(suppressions, *supp)
	}
	return suppressions
}

// commentStart returns the index of the first // or # comment marker,
// or -1. This is a line-based approximation: a marker inside a string
// literal is treated as a comment, matching the tolerant behavior of
// other per-line directive scanners.
func commentStart(line string) int {
	slash := strings.Index(line, "//")
	hash := strings.Index(line, "#")
	switch {
	case slash == -1:
		return hash
	case hash == -1:
		return slash
	case slash < hash:
		return slash
	default:
		return hash
	}
}

// parseDirective parses "phplint: <directive><rule-list>" from a comment.
func parseDirective(comment, directive string, lineNum int) *Suppression {
	for _, prefix := range []string{"phplint: " + directive, "phplint:" + directive} {
		idx := strings.Index(comment, prefix)
		if idx == -1 {
			continue
		}
		rulesStr := strings.TrimSpace(comment[idx+len(prefix):])
		if spaceIdx := strings.IndexAny(rulesStr, " \t"); spaceIdx != -1 {
			rulesStr = rulesStr[:spaceIdx]
		}
		return &Suppression{Rules: parseRuleList(rulesStr), Line: lineNum}
	}
	return nil
}

// hasCodeBefore reports whether non-comment code precedes the comment
// marker on the line.
func hasCodeBefore(line string, commentIdx int) bool {
	return strings.TrimSpace(line[:commentIdx]) != ""
}

// parseRuleList parses a comma-separated list of rule codes.
// An empty string or "all" means suppress all rules.
func parseRuleList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return []string{}
	}

	var rules []string
	for _, part := range strings.Split(s, ",") {
		if rule := strings.TrimSpace(part); rule != "" {
			rules = append(rules, rule)
		}
	}
	return rules
}

// IsSuppressed checks whether an issue is covered by a directive.
func (p *SuppressionParser) IsSuppressed(issue Issue) bool {
	line := issue.Location.StartPos.Line

	for _, supp := range p.suppressions[line] {
		if supp.Type == SuppressionInline || supp.Type == SuppressionLine {
			if matchesSuppressionRules(issue, supp.Rules) {
				return true
			}
		}
	}

	if line > 1 {
		for _, supp := range p.suppressions[line-1] {
			if supp.Type == SuppressionNextLine && matchesSuppressionRules(issue, supp.Rules) {
				return true
			}
		}
	}

	return false
}

// matchesSuppressionRules checks whether an issue matches the directive's
// rule list. An empty list means suppress all rules.
func matchesSuppressionRules(issue Issue, rules []string) bool {
	if len(rules) == 0 {
		return true
	}
	for _, rule := range rules {
		if rule == issue.Rule {
			return true
		}
	}
	return false
}

// FilterSuppressed removes suppressed issues from a list.
func FilterSuppressed(issues []Issue, parser *SuppressionParser) []Issue {
	var filtered []Issue
	for _, issue := range issues {
		if !parser.IsSuppressed(issue) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}
