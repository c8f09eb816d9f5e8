package rules

import (
	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// NoEmptyBlock flags blocks with no statements. A block holding only
// comments is tolerated by default; set allow-comments = false to flag
// those as well.
var NoEmptyBlock = &lint.Rule{
	Code:     "no-empty-block",
	Doc:      "Disallow blocks that contain no statements.",
	Category: lint.CategoryClarity,
	Level:    lint.LevelNote,
	Default:  true,
	Options: []lint.Option{
		{Name: "allow-comments", Kind: lint.OptionBool, Default: true,
			Doc: "Treat a block containing only comments as non-empty."},
	},
	Kinds: []string{"compound_statement"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		// Empty catch bodies have their own rule.
		if parent := node.Parent(); parent != nil && parent.Kind() == "catch_clause" {
			return
		}
		statements, comments := countBlockChildren(node)
		if statements > 0 {
			return
		}
		if comments > 0 && pass.Options.Bool("allow-comments") {
			return
		}
		pass.ReportNode(node, "This block is empty.")
	},
}

// NoEmptyCatch flags catch clauses that silently swallow exceptions.
// A comment inside the body documents the intent and exempts it.
var NoEmptyCatch = &lint.Rule{
	Code:     "no-empty-catch",
	Doc:      "Disallow catch clauses with an empty body.",
	Category: lint.CategorySafety,
	Level:    lint.LevelWarning,
	Default:  true,
	Kinds:    []string{"catch_clause"},
	Visit: func(pass *lint.Pass, node *syntax.Node) {
		body := node.ChildByField("body")
		if body == nil {
			return
		}
		statements, comments := countBlockChildren(body)
		if statements > 0 || comments > 0 {
			return
		}
		pass.ReportNode(node, "This catch clause swallows the exception without handling it.")
	},
}

// countBlockChildren splits a block's named children into statements
// and comments.
func countBlockChildren(block *syntax.Node) (statements, comments int) {
	for i := 0; i < block.NamedChildCount(); i++ {
		if block.NamedChild(i).Kind() == "comment" {
			comments++
		} else {
			statements++
		}
	}
	return statements, comments
}
