package rules

import (
	"fmt"

	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// ConstantCondition flags conditions whose value is a constant literal,
// which usually indicates a leftover debugging edit or a typo such as
// assignment instead of comparison.
var ConstantCondition = &lint.Rule{
	Code:     "constant-condition",
	Doc:      "Disallow constant literals as branch or loop conditions.",
	Category: lint.CategoryCorrectness,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"if_statement", "while_statement", "do_statement"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		condition := node.ChildByField("condition")
		if condition == nil {
			return
		}
		expr := condition
		if expr.Kind() == "parenthesized_expression" {
			expr = expr.NamedChild(0)
		}
		if expr == nil || !isLiteral(expr) {
			return
		}
		// while (true) and do {} while (true) are the idiomatic
		// infinite loop; only if statements get flagged for booleans.
		if expr.Kind() == "boolean" && node.Kind() != "if_statement" {
			return
		}
		pass.ReportNode(expr, fmt.Sprintf("Condition is always %s.", expr.Text()))
	},
}
