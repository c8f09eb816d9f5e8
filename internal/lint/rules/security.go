package rules

import (
	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// NoEval flags eval() calls. There is no fix; code that builds on eval
// needs restructuring, not an edit.
var NoEval = &lint.Rule{
	Code:     "no-eval",
	Doc:      "Disallow eval(), which executes arbitrary strings as code.",
	Category: lint.CategorySecurity,
	Level:    lint.LevelError,
	Default:  true,
	Kinds:    []string{"function_call_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		if callName(node) != "eval" {
			return
		}
		pass.ReportNode(node, "eval() executes arbitrary strings as PHP code and is a code injection risk.")
	},
}
