package rules

import (
	"fmt"
	"strings"

	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// sleepFunctions are the blocking delay helpers flagged by NoSleep.
var sleepFunctions = map[string]bool{
	"sleep":            true,
	"usleep":           true,
	"time_nanosleep":   true,
	"time_sleep_until": true,
}

// NoSleep flags blocking sleep calls. Disabled by default; it mostly
// matters for request-handling code.
var NoSleep = &lint.Rule{
	Code:     "no-sleep",
	Doc:      "Disallow blocking sleep calls.",
	Category: lint.CategoryBestPractices,
	Level:    lint.LevelWarning,
	Default:  false,
	Kinds:    []string{"function_call_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		name := callName(node)
		if !sleepFunctions[name] {
			return
		}
		pass.ReportNode(node, fmt.Sprintf("%s() blocks the whole process.", name))
	},
}

// PreferStrContains flags strpos() compared against false and rewrites
// it to str_contains(). The fix is potentially unsafe because strpos
// with a non-string needle behaves differently before PHP 8.
var PreferStrContains = &lint.Rule{
	Code:          "prefer-str-contains",
	Doc:           "Prefer str_contains() over strpos() compared against false.",
	Category:      lint.CategoryBestPractices,
	Level:         lint.LevelHelp,
	Default:       true,
	MinPHPVersion: "8.0",
	Kinds:         []string{"binary_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		operator := node.ChildByField("operator")
		if operator == nil {
			return
		}
		op := operator.Text()
		if op != "===" && op != "!==" {
			return
		}
		left, right := node.ChildByField("left"), node.ChildByField("right")
		call, other := left, right
		if call == nil || call.Kind() != "function_call_expression" {
			call, other = right, left
		}
		if call == nil || other == nil || call.Kind() != "function_call_expression" {
			return
		}
		if callName(call) != "strpos" || strings.ToLower(other.Text()) != "false" {
			return
		}
		args := callArguments(call)
		if len(args) != 2 {
			return
		}

		replacement := fmt.Sprintf("str_contains(%s, %s)", args[0], args[1])
		if op == "===" {
			replacement = "!" + replacement
		}
		pass.ReportNode(node, "Use str_contains() instead of comparing strpos() against false.", lint.Fix{
			Start:       node.Start(),
			End:         node.End(),
			Replacement: replacement,
			Safety:      lint.SafetyPotentiallyUnsafe,
		})
	},
}

// NoEnvOutsideConfig flags env() calls outside config files. Laravel
// caches configuration in production, at which point env() returns null
// everywhere else.
var NoEnvOutsideConfig = &lint.Rule{
	Code:         "no-env-outside-config",
	Doc:          "Disallow env() calls outside of configuration files.",
	Category:     lint.CategoryBestPractices,
	Level:        lint.LevelWarning,
	Default:      false,
	Integrations: []string{"laravel"},
	Kinds:        []string{"function_call_expression"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		if callName(node) != "env" {
			return
		}
		if inConfigDirectory(pass.Path) {
			return
		}
		pass.ReportNode(node, "env() returns null once configuration is cached; read config() instead.")
	},
}

// NoDie flags exit and die. Terminating the process bypasses shutdown
// handlers and makes code untestable.
var NoDie = &lint.Rule{
	Code:     "no-die",
	Doc:      "Disallow exit and die.",
	Category: lint.CategoryBestPractices,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"exit_statement"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		pass.ReportNode(node, "Avoid terminating the process; throw an exception or return instead.")
	},
}

// callArguments returns the source text of each argument of a call.
func callArguments(call *syntax.Node) []string {
	arguments := call.ChildByField("arguments")
	if arguments == nil {
		return nil
	}
	var texts []string
	for i := 0; i < arguments.NamedChildCount(); i++ {
		child := arguments.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		texts = append(texts, child.Text())
	}
	return texts
}

// inConfigDirectory reports whether the path has a "config" directory
// component.
func inConfigDirectory(path string) bool {
	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == "config" {
			return true
		}
	}
	return false
}
