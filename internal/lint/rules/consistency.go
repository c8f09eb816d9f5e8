package rules

import (
	"fmt"

	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// strictOperators maps loose comparison operators to their strict
// counterparts.
var strictOperators = map[string]string{
	"==": "===",
	"!=": "!==",
	"<>": "!==",
}

// StrictComparison flags loose comparisons. The fix is potentially
// unsafe: strict comparison skips PHP's type juggling, which the code
// may rely on.
var StrictComparison = &lint.Rule{
	Code:     "strict-comparison",
	Doc:      "Require strict comparison operators (=== and !==).",
	Category: lint.CategoryConsistency,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"binary_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		operator := node.ChildByField("operator")
		if operator == nil {
			return
		}
		strict, ok := strictOperators[operator.Text()]
		if !ok {
			return
		}
		pass.ReportNode(node,
			fmt.Sprintf("Use %s instead of %s to avoid implicit type juggling.", strict, operator.Text()),
			lint.Fix{
				Start:       operator.Start(),
				End:         operator.End(),
				Replacement: strict,
				Safety:      lint.SafetyPotentiallyUnsafe,
			})
	},
}
