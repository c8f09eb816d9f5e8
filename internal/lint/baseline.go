package lint

import (
	"bytes"
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gofrs/flock"
)

// baselineFormatVersion marks the on-disk format for forward
// compatibility; loading a newer version is a configuration error.
const baselineFormatVersion = 1

// BaselineEntry is one persisted record of an acknowledged issue.
type BaselineEntry struct {
	RuleCode        string `toml:"rule_code"`
	FilePath        string `toml:"file_path"`
	Signature       string `toml:"signature"`
	DisplayLocation string `toml:"display_location"`
}

// Baseline is a persisted snapshot of issue signatures used to suppress
// previously acknowledged findings on subsequent runs.
type Baseline struct {
	Version int             `toml:"version"`
	Entries []BaselineEntry `toml:"entries"`

	signatures map[string]bool
}

// GenerateBaseline captures a signature per current issue. Entries are
// ordered by (file, signature) so regenerating against unchanged issues
// produces byte-identical output.
func GenerateBaseline(issues []Issue) *Baseline {
	baseline := &Baseline{Version: baselineFormatVersion}
	seen := make(map[string]bool, len(issues))
	for _, issue := range issues {
		if seen[issue.Signature] {
			continue
		}
		seen[issue.Signature] = true
		baseline.Entries = append(baseline.Entries, BaselineEntry{
			RuleCode:        issue.Rule,
			FilePath:        issue.Location.Path,
			Signature:       issue.Signature,
			DisplayLocation: issue.Location.String(),
		})
	}
	slices.SortFunc(baseline.Entries, func(a, b BaselineEntry) int {
		return cmp.Or(
			cmp.Compare(a.FilePath, b.FilePath),
			cmp.Compare(a.Signature, b.Signature),
		)
	})
	baseline.index()
	return baseline
}

func (b *Baseline) index() {
	b.signatures = make(map[string]bool, len(b.Entries))
	for _, entry := range b.Entries {
		b.signatures[entry.Signature] = true
	}
}

// Filter removes every issue whose signature matches a baseline entry;
// the rest pass through unchanged. It returns the kept issues and the
// number of matches.
func (b *Baseline) Filter(issues []Issue) (kept []Issue, matched int) {
	for _, issue := range issues {
		if b.signatures[issue.Signature] {
			matched++
			continue
		}
		kept = append(kept, issue)
	}
	return kept, matched
}

// FindStale returns the baseline entries with no matching current
// issue. Stale entries are surfaced as a warning recommending
// regeneration, never as an error.
func (b *Baseline) FindStale(issues []Issue) []BaselineEntry {
	current := make(map[string]bool, len(issues))
	for _, issue := range issues {
		current[issue.Signature] = true
	}

	var stale []BaselineEntry
	for _, entry := range b.Entries {
		if !current[entry.Signature] {
			stale = append(stale, entry)
		}
	}
	return stale
}

// LoadBaseline reads a baseline file. A missing or malformed file is a
// fatal configuration error: the tool cannot safely decide what to
// suppress, and silently linting everything would contradict user
// intent.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, configErrorf("baseline file not found: %s (run with --generate-baseline to create it)", path)
		}
		return nil, configErrorf("read baseline %s: %v", path, err)
	}

	var baseline Baseline
	if err := toml.Unmarshal(data, &baseline); err != nil {
		return nil, configErrorf("malformed baseline %s: %v", path, err)
	}
	if baseline.Version != baselineFormatVersion {
		return nil, configErrorf("baseline %s has unsupported version %d (expected %d); regenerate it",
			path, baseline.Version, baselineFormatVersion)
	}

	baseline.index()
	return &baseline, nil
}

// Save persists the baseline to path. The write is guarded by a file
// lock and performed as an atomic temp-then-rename replace; the
// orchestrating process calls this exactly once, after all file tasks
// complete. When backup is set and a file already exists at path, it is
// copied aside with a .bkp suffix before the overwrite.
func (b *Baseline) Save(path string, backup bool) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock baseline %s: %w", path, err)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(path + ".lock")
	}()

	if backup {
		if err := backupFile(path); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# phplint baseline. Generated; do not edit by hand.\n")
	if err := toml.NewEncoder(&buf).Encode(struct {
		Version int             `toml:"version"`
		Entries []BaselineEntry `toml:"entries"`
	}{Version: b.Version, Entries: b.Entries}); err != nil {
		return fmt.Errorf("encode baseline: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".phplint-baseline-*")
	if err != nil {
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write baseline %s: %w", path, err)
	}
	return nil
}

// backupFile copies path to path.bkp when path exists.
func backupFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("backup baseline %s: %w", path, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(path + ".bkp")
	if err != nil {
		return fmt.Errorf("backup baseline %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("backup baseline %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("backup baseline %s: %w", path, err)
	}
	return nil
}

// stampSignatures computes the stable identity of each issue in one
// file, in place. issues must all belong to the same file and be sorted
// by start offset.
//
// The signature hashes the rule code, the whitespace-normalized
// message, the file path, and a location fingerprint. The fingerprint
// is anchored to the content of the issue's source line (trimmed)
// rather than its line number, so inserting or removing unrelated lines
// elsewhere in the file does not invalidate the entry. Identical lines
// are disambiguated by their ordinal among issues with the same rule,
// message, and line content. Edits within the anchored line itself
// still invalidate the fingerprint; that is an inherent approximation.
func stampSignatures(issues []Issue, lineAt func(offset int) string) {
	ordinals := make(map[string]int, len(issues))
	for i := range issues {
		issue := &issues[i]
		anchor := strings.TrimSpace(lineAt(issue.Location.Start))
		key := strings.Join([]string{
			issue.Rule,
			normalizeMessage(issue.Message),
			issue.Location.Path,
			anchor,
		}, "\x00")
		ordinal := ordinals[key]
		ordinals[key] = ordinal + 1

		sum := sha256.Sum256(fmt.Appendf(nil, "v%d\x00%s\x00%d", baselineFormatVersion, key, ordinal))
		issue.Signature = hex.EncodeToString(sum[:16])
	}
}

// normalizeMessage collapses runs of whitespace so cosmetic message
// rewording between runs does not churn signatures.
func normalizeMessage(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
