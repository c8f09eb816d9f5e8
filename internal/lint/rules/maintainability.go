package rules

import (
	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// NoGoto flags goto statements.
var NoGoto = &lint.Rule{
	Code:     "no-goto",
	Doc:      "Disallow goto statements.",
	Category: lint.CategoryMaintainability,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"goto_statement"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		pass.ReportNode(node, "goto makes control flow hard to follow; use loops or functions instead.")
	},
}
