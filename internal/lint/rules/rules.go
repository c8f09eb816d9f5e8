// Package rules bundles the built-in lint rules shipped with phplint.
package rules

import (
	"strings"

	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// All returns every bundled rule.
func All() []*lint.Rule {
	return []*lint.Rule{
		ConstantCondition,
		NoRedundantParentheses,
		NoNoop,
		NoEmptyBlock,
		NoEmptyCatch,
		StrictComparison,
		NoEval,
		NoErrorSuppression,
		NoDebugSymbols,
		NoGoto,
		NoSleep,
		PreferStrContains,
		NoEnvOutsideConfig,
		NoDie,
	}
}

// callName returns the lowercased name of a plain function call, or ""
// for method calls, variable calls, and anything else without a bare
// name callee.
func callName(node *syntax.Node) string {
	fn := node.ChildByField("function")
	if fn == nil || fn.Kind() != "name" {
		return ""
	}
	return strings.ToLower(fn.Text())
}

// isLiteral reports whether the node is a constant scalar literal.
func isLiteral(node *syntax.Node) bool {
	switch node.Kind() {
	case "boolean", "integer", "float", "string", "encapsed_string", "null":
		return true
	}
	return false
}

// enclosingStatement walks up from an expression to its
// expression_statement, or nil when the expression is embedded in a
// larger construct.
func enclosingStatement(node *syntax.Node) *syntax.Node {
	parent := node.Parent()
	if parent != nil && parent.Kind() == "expression_statement" {
		return parent
	}
	return nil
}
