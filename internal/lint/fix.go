package lint

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pmezard/go-difflib/difflib"
)

// FixCandidate is one proposed edit tagged with its originating rule.
type FixCandidate struct {
	Rule string
	Fix  Fix
}

// SkippedFix records a candidate rejected by conflict resolution,
// together with the candidate it collided with. Skipped fixes are not
// errors; they are surfaced as informational notes so no fix is lost
// silently.
type SkippedFix struct {
	Candidate    FixCandidate
	ConflictWith FixCandidate
}

func (s SkippedFix) String() string {
	return fmt.Sprintf("fix from %s at offset %d skipped: conflicts with fix from %s at offset %d",
		s.Candidate.Rule, s.Candidate.Fix.Start,
		s.ConflictWith.Rule, s.ConflictWith.Fix.Start)
}

// FixResult represents the outcome of applying fixes to one file.
type FixResult struct {
	// Path is the file path.
	Path string

	// OriginalContent is the content before fixing.
	OriginalContent []byte

	// FixedContent is the content after applying accepted fixes.
	FixedContent []byte

	// Applied is the number of fixes that were applied.
	Applied int

	// Skipped lists fixes rejected due to conflicts.
	Skipped []SkippedFix
}

// HasChanges returns true if fixes changed the content.
func (r *FixResult) HasChanges() bool {
	return !bytes.Equal(r.OriginalContent, r.FixedContent)
}

// Diff returns a unified diff between original and fixed content.
func (r *FixResult) Diff() string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(r.OriginalContent)),
		B:        difflib.SplitLines(string(r.FixedContent)),
		FromFile: r.Path,
		ToFile:   r.Path,
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	return text
}

// CollectFixes gathers the fix candidates from a file's issues that are
// at or below the safety threshold. Multiple fixes on one issue are
// alternatives: only the first (safest declared) candidate within the
// threshold enters conflict resolution.
func CollectFixes(issues []Issue, threshold Safety) []FixCandidate {
	var candidates []FixCandidate
	for _, issue := range issues {
		for _, fix := range issue.Fixes {
			if fix.Safety <= threshold {
				candidates = append(candidates, FixCandidate{Rule: issue.Rule, Fix: fix})
				break
			}
		}
	}
	return candidates
}

// ResolveConflicts partitions candidates into an accepted subset with
// pairwise non-overlapping ranges and the skipped remainder. Candidates
// are considered in ascending (start, end) order and accepted greedily,
// so at most one fix touches any given byte and ties go to the
// earlier-sorted candidate. accepted plus skipped always equals the
// input set.
func ResolveConflicts(candidates []FixCandidate) (accepted []FixCandidate, skipped []SkippedFix) {
	if len(candidates) == 0 {
		return nil, nil
	}

	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b FixCandidate) int {
		return cmp.Or(
			cmp.Compare(a.Fix.Start, b.Fix.Start),
			cmp.Compare(a.Fix.End, b.Fix.End),
		)
	})

	lastEnd := -1
	var lastAccepted FixCandidate
	for _, candidate := range sorted {
		if candidate.Fix.Start >= lastEnd {
			accepted = append(accepted, candidate)
			lastAccepted = candidate
			// A pure insertion keeps lastEnd so another edit may
			// start at the same offset.
			if candidate.Fix.End > lastEnd {
				lastEnd = candidate.Fix.End
			}
			continue
		}
		skipped = append(skipped, SkippedFix{Candidate: candidate, ConflictWith: lastAccepted})
	}
	return accepted, skipped
}

// ApplyFixes applies accepted fixes to the original buffer in
// descending start order, so offsets of not-yet-applied edits stay
// valid. Callers must pass a conflict-free set (see ResolveConflicts).
func ApplyFixes(content []byte, accepted []FixCandidate) []byte {
	ordered := slices.Clone(accepted)
	slices.SortStableFunc(ordered, func(a, b FixCandidate) int {
		// Equal starts can only mean an insertion next to another
		// edit. The wider edit must land first or its replacement
		// would swallow the inserted text.
		return cmp.Or(
			cmp.Compare(b.Fix.Start, a.Fix.Start),
			cmp.Compare(b.Fix.End, a.Fix.End),
		)
	})

	result := content
	for _, candidate := range ordered {
		fix := candidate.Fix
		next := make([]byte, 0, len(result)-(fix.End-fix.Start)+len(fix.Replacement))
		next = append(next, result[:fix.Start]...)
		next = append(next, fix.Replacement...)
		next = append(next, result[fix.End:]...)
		result = next
	}
	return result
}

// FixFile turns one file's issues into a single consistent rewrite.
func FixFile(path string, content []byte, issues []Issue, threshold Safety) FixResult {
	candidates := CollectFixes(issues, threshold)
	accepted, skipped := ResolveConflicts(candidates)

	return FixResult{
		Path:            path,
		OriginalContent: content,
		FixedContent:    ApplyFixes(content, accepted),
		Applied:         len(accepted),
		Skipped:         skipped,
	}
}

// WriteFixResult writes the fixed content back to the file. The write
// is a whole-file atomic replace (temp file then rename), never an
// in-place patch that could be interrupted mid-write.
func WriteFixResult(r *FixResult) error {
	if !r.HasChanges() {
		return nil
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(r.Path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(r.Path)
	tmp, err := os.CreateTemp(dir, ".phplint-*")
	if err != nil {
		return fmt.Errorf("writing %s: %w", r.Path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(r.FixedContent); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", r.Path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", r.Path, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", r.Path, err)
	}
	if err := os.Rename(tmpName, r.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", r.Path, err)
	}
	return nil
}

// Fixer applies fixes across files.
type Fixer struct {
	// Threshold is the maximum fix safety that will be applied.
	Threshold Safety

	// DryRun computes fixed content and diffs without writing.
	DryRun bool

	// FormatAfterFix, when set, runs on each written file as a
	// separate best-effort pass; its error is reported per file and
	// never blocks fixing other files.
	FormatAfterFix func(path string) error
}

// Fix applies candidate fixes for the given issues, grouped by file.
// Write failures are reported per file; other files continue. Results
// are ordered by path.
func (f *Fixer) Fix(issues []Issue) ([]FixResult, []FileError) {
	byFile := make(map[string][]Issue)
	for _, issue := range issues {
		if len(issue.Fixes) > 0 {
			byFile[issue.Location.Path] = append(byFile[issue.Location.Path], issue)
		}
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var results []FixResult
	var errs []FileError
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, FileError{Path: path, Err: err})
			continue
		}

		result := FixFile(path, content, byFile[path], f.Threshold)
		if !f.DryRun {
			if err := WriteFixResult(&result); err != nil {
				errs = append(errs, FileError{Path: path, Err: err})
				continue
			}
			if f.FormatAfterFix != nil && result.HasChanges() {
				if err := f.FormatAfterFix(path); err != nil {
					errs = append(errs, FileError{Path: path, Err: fmt.Errorf("format after fix: %w", err)})
				}
			}
		}
		results = append(results, result)
	}
	return results, errs
}

// FixableCount returns the number of issues with at least one fix at or
// below the threshold.
func FixableCount(issues []Issue, threshold Safety) int {
	count := 0
	for _, issue := range issues {
		if issue.Fixable(threshold) {
			count++
		}
	}
	return count
}
