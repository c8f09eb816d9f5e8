package rules

import (
	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// parenRequiredParents lists constructs whose grammar demands the
// parentheses, so the wrapped expression is never redundant there.
var parenRequiredParents = map[string]bool{
	"if_statement":     true,
	"while_statement":  true,
	"do_statement":     true,
	"switch_statement": true,
	"match_expression": true,
}

// parenSimpleInner lists expression kinds that bind at least as tightly
// as any surrounding operator, so stripping the parentheses around them
// cannot change evaluation order.
var parenSimpleInner = map[string]bool{
	"boolean":                  true,
	"integer":                  true,
	"float":                    true,
	"string":                   true,
	"encapsed_string":          true,
	"null":                     true,
	"variable_name":            true,
	"name":                     true,
	"qualified_name":           true,
	"function_call_expression": true,
	"member_access_expression": true,
	"member_call_expression":   true,
	"scoped_call_expression":   true,
	"subscript_expression":     true,
	"parenthesized_expression": true,
}

// NoRedundantParentheses flags parentheses that neither the grammar nor
// operator precedence requires.
var NoRedundantParentheses = &lint.Rule{
	Code:     "no-redundant-parentheses",
	Doc:      "Disallow parentheses that have no grammatical or precedence effect.",
	Category: lint.CategoryRedundancy,
	Level:    lint.LevelNote,
	Default:  true,
	Kinds:    []string{"parenthesized_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		if node.HasError() {
			return
		}
		if parent := node.Parent(); parent != nil && parenRequiredParents[parent.Kind()] {
			return
		}
		inner := node.NamedChild(0)
		if inner == nil || !parenSimpleInner[inner.Kind()] {
			return
		}
		pass.ReportNode(node, "Parentheses around this expression are redundant.", lint.Fix{
			Start:       node.Start(),
			End:         node.End(),
			Replacement: inner.Text(),
			Safety:      lint.SafetySafe,
		})
	},
}

// noopFixUnsafeParents lists constructs where an empty statement is the
// whole body, so deleting it would capture the following statement.
var noopFixUnsafeParents = map[string]bool{
	"if_statement":      true,
	"else_clause":       true,
	"while_statement":   true,
	"do_statement":      true,
	"for_statement":     true,
	"foreach_statement": true,
}

// NoNoop flags statements that have no effect.
var NoNoop = &lint.Rule{
	Code:     "no-noop",
	Doc:      "Disallow statements that have no effect.",
	Category: lint.CategoryRedundancy,
	Level:    lint.LevelNote,
	Default:  true,
	Kinds:    []string{"empty_statement"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		// When the empty statement is itself a loop or branch body,
		// deleting it would swallow the next statement. Report without
		// a fix there.
		if parent := node.Parent(); parent != nil && noopFixUnsafeParents[parent.Kind()] {
			pass.ReportNode(node, "This statement has no effect.")
			return
		}
		pass.ReportNode(node, "This statement has no effect.", lint.Fix{
			Start:  node.Start(),
			End:    node.End(),
			Safety: lint.SafetySafe,
		})
	},
}
