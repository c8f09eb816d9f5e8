package lint

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
)

// Driver executes a resolved rule set over files. File processing is
// embarrassingly parallel: each file's pipeline (read, parse, rule
// execution, suppression, signature stamping) runs as one task on a
// fixed-size worker pool, with no shared mutable state between files.
// The registry and configuration are immutable after startup and safe
// for concurrent reads.
type Driver struct {
	provider syntax.Provider
	excluded func(path string) bool
	jobs     int
}

// NewDriver creates a driver using the given tree provider.
func NewDriver(provider syntax.Provider) *Driver {
	return &Driver{provider: provider, jobs: runtime.GOMAXPROCS(0)}
}

// SetJobs sets the worker pool size. Values below 1 reset the pool to
// GOMAXPROCS.
func (d *Driver) SetJobs(n int) {
	if n < 1 {
		n = runtime.GOMAXPROCS(0)
	}
	d.jobs = n
}

// SetExcludeFilter installs a predicate for paths to skip during
// directory expansion.
func (d *Driver) SetExcludeFilter(excluded func(path string) bool) {
	d.excluded = excluded
}

// Run executes the effective rule set on the specified paths and
// returns the aggregated result. Paths may be files or directories
// (walked recursively for PHP files). Per-file read and parse failures
// are collected as FileErrors and never abort the run; cancelling the
// context stops not-yet-started tasks.
//
// Issues are globally ordered by (file, offset, rule) after all tasks
// complete, so output is deterministic regardless of worker scheduling.
func (d *Driver) Run(ctx context.Context, paths []string, effective []EffectiveRule) (*Result, error) {
	files, err := d.expandPaths(paths)
	if err != nil {
		return nil, err
	}

	type fileOutcome struct {
		issues     []Issue
		ruleErrors []RuleError
		fileError  *FileError
	}
	outcomes := make([]fileOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(d.jobs, max(len(files), 1)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			issues, ruleErrors, err := d.runFile(gctx, path, effective)
			if err != nil {
				outcomes[i] = fileOutcome{fileError: &FileError{Path: path, Err: err}}
				return nil
			}
			outcomes[i] = fileOutcome{issues: issues, ruleErrors: ruleErrors}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Files: len(files)}
	for _, outcome := range outcomes {
		if outcome.fileError != nil {
			result.FileErrors = append(result.FileErrors, *outcome.fileError)
			continue
		}
		result.Issues = append(result.Issues, outcome.issues...)
		result.RuleErrors = append(result.RuleErrors, outcome.ruleErrors...)
	}

	SortIssuesByLocation(result.Issues)
	return result, nil
}

// runFile runs the pipeline for a single file.
func (d *Driver) runFile(ctx context.Context, path string, effective []EffectiveRule) ([]Issue, []RuleError, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading file: %w", err)
	}

	tree, err := d.provider.Parse(ctx, path, content)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing file: %w", err)
	}

	issues, ruleErrors := ExecuteTree(tree, effective)
	issues = FilterSuppressed(issues, NewSuppressionParser(content))

	// Signatures are stamped after suppression so a suppressed issue
	// never occupies an ordinal slot, keeping identities stable
	// between runs.
	SortIssuesByLocation(issues)
	stampSignatures(issues, tree.LineAt)

	return issues, ruleErrors, nil
}

// SortIssuesByLocation orders issues by (file, start offset, rule).
// This is the canonical deterministic order applied after parallel
// execution.
func SortIssuesByLocation(issues []Issue) {
	slices.SortFunc(issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(a.Location.Path, b.Location.Path),
			cmp.Compare(a.Location.Start, b.Location.Start),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
}

// SortIssuesForDisplay orders issues for the --sort presentation:
// level descending, then rule code, then location ascending. The
// (file, offset) tie-break makes the order total.
func SortIssuesForDisplay(issues []Issue) {
	slices.SortFunc(issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(int(b.Level), int(a.Level)),
			cmp.Compare(a.Rule, b.Rule),
			cmp.Compare(a.Location.Path, b.Location.Path),
			cmp.Compare(a.Location.Start, b.Location.Start),
		)
	})
}

// ApplyBaseline filters the result's issues against a baseline,
// recording the match count and the stale entries on the result.
func ApplyBaseline(result *Result, baseline *Baseline) {
	result.StaleBaseline = baseline.FindStale(result.Issues)
	result.Issues, result.BaselineMatched = baseline.Filter(result.Issues)
}

// FilterFixable narrows reporting to issues that carry a fix at or
// below the threshold. This filters reporting only; fixing always
// considers every collected issue.
func FilterFixable(issues []Issue, threshold Safety) []Issue {
	var fixable []Issue
	for _, issue := range issues {
		if issue.Fixable(threshold) {
			fixable = append(fixable, issue)
		}
	}
	return fixable
}

// expandPaths expands files and directories into a deduplicated,
// sorted list of PHP files.
func (d *Driver) expandPaths(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, path := range paths {
		expanded, err := d.expandPath(path)
		if err != nil {
			return nil, err
		}
		for _, f := range expanded {
			abs, err := filepath.Abs(f)
			if err != nil {
				abs = f
			}
			if !seen[abs] {
				seen[abs] = true
				files = append(files, f)
			}
		}
	}

	slices.Sort(files)
	return files, nil
}

// expandPath expands a single path. Directories are walked recursively;
// hidden directories and excluded paths are skipped.
func (d *Driver) expandPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") && entry.Name() != "." {
				return filepath.SkipDir
			}
			if d.excluded != nil && p != path && d.excluded(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPHPFile(entry.Name()) {
			return nil
		}
		if d.excluded != nil && d.excluded(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	return files, err
}

// IsPHPFile checks whether a filename looks like a PHP source file.
func IsPHPFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".php", ".phtml", ".php5", ".php7", ".phps":
		return true
	}
	return false
}
