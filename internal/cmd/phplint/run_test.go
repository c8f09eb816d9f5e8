package phplint

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCmd(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	code = RunWithIO(context.Background(), args, nil, &out, &errBuf)
	return code, out.String(), errBuf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCmd(t, "-version")
	if code != 0 {
		t.Errorf("returned %d, want 0", code)
	}
	if !strings.HasPrefix(stdout, "phplint ") {
		t.Errorf("stdout = %q, want version banner", stdout)
	}
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCmd(t, "-help")
	if code != 0 {
		t.Errorf("returned %d, want 0", code)
	}
	if !strings.Contains(stderr, "Usage: phplint") {
		t.Errorf("stderr = %q, want usage text", stderr)
	}
}

func TestRun_CleanFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "clean.php", "<?php\necho 1;\n")

	code, _, stderr := runCmd(t, file)
	if code != 0 {
		t.Errorf("returned %d, want 0\nstderr: %s", code, stderr)
	}
}

func TestRun_ErrorLevelIssueFailsRun(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "bad.php", "<?php\neval($code);\n")

	code, stdout, _ := runCmd(t, file)
	if code != 2 {
		t.Errorf("returned %d, want 2", code)
	}
	if !strings.Contains(stdout, "no-eval") {
		t.Errorf("stdout = %q, want a no-eval issue", stdout)
	}
}

func TestRun_MinimumFailLevel(t *testing.T) {
	dir := t.TempDir()
	// goto is warning level: below the default failure level, at or
	// above an explicit "warning".
	file := writeFile(t, dir, "warn.php", "<?php\ngoto end;\necho 1;\nend:\n")

	if code, _, _ := runCmd(t, file); code != 0 {
		t.Errorf("default threshold: returned %d, want 0", code)
	}
	if code, _, _ := runCmd(t, "-minimum-fail-level", "warning", file); code != 2 {
		t.Errorf("warning threshold: returned %d, want 2", code)
	}
}

func TestRun_OnlyRestrictsRules(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "mixed.php", "<?php\neval($code);\ndie('x');\n")

	code, stdout, _ := runCmd(t, "-only", "no-die", "-minimum-fail-level", "warning", file)
	if code != 2 {
		t.Errorf("returned %d, want 2", code)
	}
	if strings.Contains(stdout, "no-eval") {
		t.Errorf("stdout = %q, no-eval should not run under --only no-die", stdout)
	}
	if !strings.Contains(stdout, "no-die") {
		t.Errorf("stdout = %q, want a no-die issue", stdout)
	}
}

func TestRun_OnlyUnknownRule(t *testing.T) {
	code, _, stderr := runCmd(t, "-only", "no-such-rule", ".")
	if code != 1 {
		t.Errorf("returned %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown rule") {
		t.Errorf("stderr = %q, want unknown rule error", stderr)
	}
}

func TestRun_Fix(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "fixme.php", "<?php\n$x = (42);\n")

	code, stdout, stderr := runCmd(t, "-fix", file)
	if code != 0 {
		t.Fatalf("returned %d, want 0\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Applied 1 fix(es)") {
		t.Errorf("stdout = %q, want applied summary", stdout)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(content), "<?php\n$x = 42;\n"; got != want {
		t.Errorf("file after fix = %q, want %q", got, want)
	}
}

func TestRun_FixIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "fixme.php", "<?php\n$x = (42);\n")

	runCmd(t, "-fix", file)
	first, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCmd(t, "-fix", file)
	if code != 0 {
		t.Errorf("second run returned %d, want 0", code)
	}
	if !strings.Contains(stdout, "Applied 0 fix(es)") {
		t.Errorf("second run stdout = %q, want zero fixes", stdout)
	}
	second, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second fix run changed the file")
	}
}

func TestRun_FixDryRun(t *testing.T) {
	dir := t.TempDir()
	original := "<?php\n$x = (42);\n"
	file := writeFile(t, dir, "fixme.php", original)

	code, stdout, _ := runCmd(t, "-fix", "-dry-run", file)
	if code != 2 {
		t.Errorf("returned %d, want 2 for pending changes", code)
	}
	if !strings.Contains(stdout, "-$x = (42);") || !strings.Contains(stdout, "+$x = 42;") {
		t.Errorf("stdout = %q, want a unified diff", stdout)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != original {
		t.Error("dry run modified the file")
	}
}

func TestRun_FixRespectsSafetyThreshold(t *testing.T) {
	dir := t.TempDir()
	original := "<?php\nif ($a == $b) { echo 1; }\n"
	file := writeFile(t, dir, "loose.php", original)

	// strict-comparison's fix is potentially unsafe and must not apply
	// by default.
	runCmd(t, "-fix", file)
	content, _ := os.ReadFile(file)
	if string(content) != original {
		t.Fatalf("default threshold applied an unsafe fix: %q", content)
	}

	runCmd(t, "-fix", "-potentially-unsafe", file)
	content, _ = os.ReadFile(file)
	if !strings.Contains(string(content), "$a === $b") {
		t.Errorf("file after --potentially-unsafe fix = %q, want strict operator", content)
	}
}

func TestRun_BaselineRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "legacy.php", "<?php\neval($code);\n")
	baseline := filepath.Join(dir, "baseline.toml")

	code, stdout, stderr := runCmd(t, "-generate-baseline", "-baseline", baseline, file)
	if code != 0 {
		t.Fatalf("generate returned %d, want 0\nstderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "Baseline with 1 entry") {
		t.Errorf("stdout = %q, want baseline summary", stdout)
	}

	code, _, stderr = runCmd(t, "-baseline", baseline, file)
	if code != 0 {
		t.Errorf("lint with baseline returned %d, want 0\nstderr: %s", code, stderr)
	}
}

func TestRun_BaselineSurvivesLineInsertions(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "legacy.php", "<?php\neval($code);\n")
	baseline := filepath.Join(dir, "baseline.toml")

	runCmd(t, "-generate-baseline", "-baseline", baseline, file)

	// Insert unrelated lines above the baselined issue.
	writeFile(t, dir, "legacy.php", "<?php\necho 'hello';\necho 'world';\neval($code);\n")

	code, _, stderr := runCmd(t, "-baseline", baseline, file)
	if code != 0 {
		t.Errorf("returned %d, want 0 (baseline should still match)\nstderr: %s", code, stderr)
	}
}

func TestRun_MissingBaselineIsFatal(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.php", "<?php\necho 1;\n")

	code, _, stderr := runCmd(t, "-baseline", filepath.Join(dir, "missing.toml"), file)
	if code != 1 {
		t.Errorf("returned %d, want 1", code)
	}
	if !strings.Contains(stderr, "baseline file not found") {
		t.Errorf("stderr = %q, want missing baseline error", stderr)
	}
}

func TestRun_StaleBaselineWarns(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "legacy.php", "<?php\neval($code);\n")
	baseline := filepath.Join(dir, "baseline.toml")

	runCmd(t, "-generate-baseline", "-baseline", baseline, file)

	// Fix the baselined issue; its entry goes stale.
	writeFile(t, dir, "legacy.php", "<?php\necho 1;\n")

	code, stdout, _ := runCmd(t, "-baseline", baseline, file)
	if code != 0 {
		t.Errorf("returned %d, want 0 (stale entries are not errors)", code)
	}
	if !strings.Contains(stdout, "no longer match") {
		t.Errorf("stdout = %q, want stale baseline warning", stdout)
	}
}

func TestRun_JSONFormat(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "bad.php", "<?php\neval($code);\n")

	code, stdout, _ := runCmd(t, "-format", "json", file)
	if code != 2 {
		t.Errorf("returned %d, want 2", code)
	}

	var payload struct {
		Issues []struct {
			Rule string `json:"rule"`
		} `json:"issues"`
	}
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout)
	}
	if len(payload.Issues) != 1 || payload.Issues[0].Rule != "no-eval" {
		t.Errorf("issues = %+v, want one no-eval issue", payload.Issues)
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	code, _, stderr := runCmd(t, "-format", "yaml", ".")
	if code != 1 {
		t.Errorf("returned %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown format") {
		t.Errorf("stderr = %q, want unknown format error", stderr)
	}
}

func TestRun_ListRules(t *testing.T) {
	code, stdout, _ := runCmd(t, "-list-rules")
	if code != 0 {
		t.Errorf("returned %d, want 0", code)
	}
	for _, want := range []string{"no-eval", "strict-comparison", "no-redundant-parentheses"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing rule %s", want)
		}
	}
}

func TestRun_Explain(t *testing.T) {
	code, stdout, _ := runCmd(t, "-explain", "no-empty-block")
	if code != 0 {
		t.Errorf("returned %d, want 0", code)
	}
	if !strings.Contains(stdout, "allow-comments") {
		t.Errorf("stdout = %q, want the rule's options", stdout)
	}

	code, _, stderr := runCmd(t, "-explain", "nope")
	if code != 1 {
		t.Errorf("unknown rule returned %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown rule") {
		t.Errorf("stderr = %q, want unknown rule error", stderr)
	}
}

func TestRun_SuppressionComment(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "suppressed.php", "<?php\n// phplint: disable-next-line=no-eval\neval($code);\n")

	code, _, stderr := runCmd(t, file)
	if code != 0 {
		t.Errorf("returned %d, want 0\nstderr: %s", code, stderr)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "bad.php", "<?php\neval($code);\n")
	config := writeFile(t, dir, "phplint.toml", "[rules.no-eval]\nenabled = false\n")

	code, _, stderr := runCmd(t, "-config", config, file)
	if code != 0 {
		t.Errorf("returned %d, want 0\nstderr: %s", code, stderr)
	}
}

func TestRun_ConfigUnknownKey(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "phplint.toml", "unknown_key = true\n")

	code, _, stderr := runCmd(t, "-config", config, ".")
	if code != 1 {
		t.Errorf("returned %d, want 1", code)
	}
	if !strings.Contains(stderr, "unknown key") {
		t.Errorf("stderr = %q, want unknown key error", stderr)
	}
}

func TestRun_BrokenFileIsRecoverable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.php", "<?php\neval($code);\n")
	// A dangling symlink is collected by the walk but fails to read.
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "broken.php")); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runCmd(t, dir)
	if code != 2 {
		t.Errorf("returned %d, want 2 (good file's issues still reported)", code)
	}
	if !strings.Contains(stdout, "no-eval") {
		t.Errorf("stdout = %q, want the good file's issue", stdout)
	}
	if !strings.Contains(stdout, "tool error:") {
		t.Errorf("stdout = %q, want a tool error for the unreadable file", stdout)
	}
}
