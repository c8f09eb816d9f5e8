package rules

import (
	"fmt"
	"slices"

	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// NoErrorSuppression flags the @ error suppression operator. The fix
// only removes the operator; code downstream may rely on the silenced
// warning, hence potentially unsafe.
var NoErrorSuppression = &lint.Rule{
	Code:     "no-error-suppression",
	Doc:      "Disallow the @ error suppression operator.",
	Category: lint.CategorySafety,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"error_suppression_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		pass.ReportNode(node, "The @ operator hides errors instead of handling them.", lint.Fix{
			Start:  node.Start(),
			End:    node.Start() + 1,
			Safety: lint.SafetyPotentiallyUnsafe,
		})
	},
}

// NoDebugSymbols flags calls to debug output helpers that should never
// reach production. The fix deletes the whole statement and is unsafe:
// print_r and var_export return a value when their second argument is
// true, and surrounding code may consume it.
var NoDebugSymbols = &lint.Rule{
	Code:     "no-debug-symbols",
	Doc:      "Disallow calls to debugging helpers such as var_dump and dd.",
	Category: lint.CategorySafety,
	Level:    lint.LevelWarning,
	Default:  true,
	Options: []lint.Option{
		{Name: "functions", Kind: lint.OptionStringList,
			Default: []string{"var_dump", "print_r", "dd", "dump", "var_export", "debug_print_backtrace"},
			Doc:     "Function names treated as debugging helpers."},
	},
	Kinds: []string{"function_call_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		name := callName(node)
		if name == "" || !slices.Contains(pass.Options.StringList("functions"), name) {
			return
		}
		message := fmt.Sprintf("Debugging call %s() should not be committed.", name)
		if stmt := enclosingStatement(node); stmt != nil {
			pass.ReportNode(node, message, lint.Fix{
				Start:  stmt.Start(),
				End:    stmt.End(),
				Safety: lint.SafetyUnsafe,
			})
			return
		}
		pass.ReportNode(node, message)
	},
}
