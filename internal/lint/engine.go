package lint

import (
	"fmt"

	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// ruleState tracks one effective rule during a single file's execution.
// A rule that faults is disabled for the remainder of the file; other
// rules keep running.
type ruleState struct {
	effective EffectiveRule
	pass      *Pass
	failed    bool
}

// ExecuteTree runs the effective rule set against one file's tree and
// collects the issues. Rules execute independently; their issue lists
// are concatenated in rule-code order (the order of effective), which
// together with the walk order makes two runs over the same input
// byte-identical.
//
// A rule that panics is caught at the invocation boundary and reported
// as a RuleError attributed to (rule, file); execution continues for
// all other rules. Out-of-bounds issue locations and fixes are rule
// bugs and surface through the same boundary, because Pass.Report
// validates them at the point of issue creation.
func ExecuteTree(tree *syntax.Tree, effective []EffectiveRule) ([]Issue, []RuleError) {
	states := make([]*ruleState, len(effective))
	issuesPerRule := make([][]Issue, len(effective))

	for i, er := range effective {
		i, er := i, er
		state := &ruleState{effective: er}
		state.pass = &Pass{
			Tree:    tree,
			Path:    tree.Path(),
			Level:   er.Level,
			Options: er.Options,
			Report: func(issue Issue) {
				issue.Rule = er.Rule.Code
				issue.Category = er.Rule.Category
				issue.Level = er.Level
				validateIssue(tree, &issue)
				issuesPerRule[i] = append(issuesPerRule[i], issue)
			},
		}
		states[i] = state
	}

	// Dispatch table: node kind -> interested rules, plus the rules
	// that visit everything.
	byKind := make(map[string][]*ruleState)
	var allKinds []*ruleState
	for _, state := range states {
		if len(state.effective.Rule.Kinds) == 0 {
			allKinds = append(allKinds, state)
			continue
		}
		for _, kind := range state.effective.Rule.Kinds {
			byKind[kind] = append(byKind[kind], state)
		}
	}

	var ruleErrors []RuleError
	syntax.Walk(tree.Root(), func(node *syntax.Node) bool {
		for _, state := range allKinds {
			visitGuarded(state, node, tree.Path(), &ruleErrors)
		}
		for _, state := range byKind[node.Kind()] {
			visitGuarded(state, node, tree.Path(), &ruleErrors)
		}
		return true
	})

	var issues []Issue
	for i := range states {
		issues = append(issues, issuesPerRule[i]...)
	}
	return issues, ruleErrors
}

// visitGuarded invokes one rule on one node, converting panics into
// tool diagnostics. One bad rule must not abort the run.
func visitGuarded(state *ruleState, node *syntax.Node, path string, ruleErrors *[]RuleError) {
	if state.failed {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			state.failed = true
			*ruleErrors = append(*ruleErrors, RuleError{
				Rule: state.effective.Rule.Code,
				Path: path,
				Err:  fmt.Errorf("panic: %v", r),
			})
		}
	}()
	state.effective.Rule.Visit(state.pass, node)
}

// validateIssue enforces the issue validity invariant at the point of
// creation: the primary location and every fix must lie within the
// file's source buffer. A violation is a rule bug, not a recoverable
// runtime condition, so it panics and is attributed to the rule by the
// invocation boundary.
func validateIssue(tree *syntax.Tree, issue *Issue) {
	if issue.Location.Start < 0 || issue.Location.End > tree.Len() || issue.Location.Start > issue.Location.End {
		panic(fmt.Sprintf("issue location [%d,%d) out of bounds for %s (len %d)",
			issue.Location.Start, issue.Location.End, tree.Path(), tree.Len()))
	}
	for _, fix := range issue.Fixes {
		if fix.Start < 0 || fix.End > tree.Len() || fix.Start > fix.End {
			panic(fmt.Sprintf("fix range [%d,%d) out of bounds for %s (len %d)",
				fix.Start, fix.End, tree.Path(), tree.Len()))
		}
	}
}
