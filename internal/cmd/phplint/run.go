// Package phplint implements the phplint command.
package phplint

import (
	"context"
	"flag"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/yigitcukuren/mago-sub000/internal/cli"
	"github.com/yigitcukuren/mago-sub000/internal/lint"
	"github.com/yigitcukuren/mago-sub000/internal/lint/rules"
	"github.com/yigitcukuren/mago-sub000/internal/php/syntax"
	"github.com/yigitcukuren/mago-sub000/internal/version"
	"github.com/yigitcukuren/mago-sub000/internal/watch"
)

// defaultBaselinePath is used when --generate-baseline runs without an
// explicit --baseline path.
const defaultBaselinePath = "phplint.baseline.toml"

// options collects the parsed command line.
type options struct {
	configPath        string
	only              string
	pedantic          bool
	phpVersion        string
	minimumFailLevel  string
	sortBySeverity    bool
	format            string
	fix               bool
	dryRun            bool
	potentiallyUnsafe bool
	unsafe            bool
	fixableOnly       bool
	formatAfterFix    string
	baselinePath      string
	generateBaseline  bool
	backupBaseline    bool
	jobs              int
	watchMode         bool
	listRules         bool
	explain           string
	noColor           bool
	showVersion       bool
}

// Run executes phplint with the given arguments. Returns an exit code.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for embedding and testing.
func RunWithIO(ctx context.Context, args []string, _ io.Reader, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("phplint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to phplint.toml (default: search upwards from the working directory)")
	fs.StringVar(&opts.only, "only", "", "comma-separated rule codes; run exactly these rules")
	fs.BoolVar(&opts.pedantic, "pedantic", false, "enable every rule, including default-disabled ones")
	fs.StringVar(&opts.phpVersion, "php-version", "", "target PHP version (overrides the config file)")
	fs.StringVar(&opts.minimumFailLevel, "minimum-fail-level", "error", "lowest level that causes a failing exit code (note, help, warning, error)")
	fs.BoolVar(&opts.sortBySeverity, "sort", false, "sort issues by level (highest first) instead of by file")
	fs.StringVar(&opts.format, "format", "rich", "output format: rich, short, json, checkstyle, github")
	fs.BoolVar(&opts.fix, "fix", false, "apply fixes instead of reporting issues")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "with --fix, print diffs instead of writing files")
	fs.BoolVar(&opts.potentiallyUnsafe, "potentially-unsafe", false, "also apply potentially unsafe fixes")
	fs.BoolVar(&opts.unsafe, "unsafe", false, "also apply unsafe fixes (implies --potentially-unsafe)")
	fs.BoolVar(&opts.fixableOnly, "fixable-only", false, "report only issues that have an applicable fix")
	fs.StringVar(&opts.formatAfterFix, "format-after-fix", "", "command to run on each fixed file (the path is appended)")
	fs.StringVar(&opts.baselinePath, "baseline", "", "baseline file to filter issues against")
	fs.BoolVar(&opts.generateBaseline, "generate-baseline", false, "write a baseline capturing all current issues, then exit")
	fs.BoolVar(&opts.backupBaseline, "backup-baseline", true, "keep a .bkp copy when overwriting an existing baseline")
	fs.IntVar(&opts.jobs, "jobs", 0, "number of files to lint in parallel (default: number of CPUs)")
	fs.BoolVar(&opts.watchMode, "watch", false, "re-lint whenever watched files change")
	fs.BoolVar(&opts.listRules, "list-rules", false, "list all registered rules and exit")
	fs.StringVar(&opts.explain, "explain", "", "print detailed documentation for a rule and exit")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: phplint [flags] [paths...]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Lint PHP files. Paths may be files or directories; with no paths,")
		cli.Writeln(stderr, "the paths from phplint.toml are used, falling back to the current")
		cli.Writeln(stderr, "directory.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Exit codes:")
		cli.Writeln(stderr, "  0  no issues at or above the failure level")
		cli.Writeln(stderr, "  1  fatal error (bad configuration, unreadable baseline)")
		cli.Writeln(stderr, "  2  issues found, or pending changes with --fix --dry-run")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Examples:")
		cli.Writeln(stderr, "  phplint src/                      # Lint a directory")
		cli.Writeln(stderr, "  phplint --fix src/                # Apply safe fixes")
		cli.Writeln(stderr, "  phplint --fix --dry-run src/      # Preview fixes as diffs")
		cli.Writeln(stderr, "  phplint --generate-baseline src/  # Accept current issues")
		cli.Writeln(stderr, "  phplint --only no-eval,no-die .   # Run two specific rules")
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if opts.showVersion {
		cli.Writef(stdout, "phplint %s\n", version.String())
		return cli.ExitOK
	}

	registry := lint.NewRegistry()
	if err := registry.Register(rules.All()...); err != nil {
		cli.Writef(stderr, "phplint: %v\n", err)
		return cli.ExitError
	}

	if opts.listRules {
		printRuleList(stdout, registry)
		return cli.ExitOK
	}
	if opts.explain != "" {
		return explainRule(stdout, stderr, registry, opts.explain)
	}

	minFailLevel, err := lint.ParseLevel(opts.minimumFailLevel)
	if err != nil {
		cli.Writef(stderr, "phplint: --minimum-fail-level: %v\n", err)
		return cli.ExitError
	}

	config, err := lint.LoadConfig(opts.configPath)
	if err != nil {
		cli.Writef(stderr, "phplint: %v\n", err)
		return cli.ExitError
	}
	if opts.phpVersion != "" {
		config.PHPVersion = opts.phpVersion
	}

	resolveConfig, err := config.ResolveConfig(splitRuleList(opts.only), opts.pedantic)
	if err != nil {
		cli.Writef(stderr, "phplint: %v\n", err)
		return cli.ExitError
	}
	effective, err := registry.Resolve(resolveConfig)
	if err != nil {
		cli.Writef(stderr, "phplint: %v\n", err)
		return cli.ExitError
	}

	reporter, err := newReporter(&opts, stdout)
	if err != nil {
		cli.Writef(stderr, "phplint: %v\n", err)
		return cli.ExitError
	}

	paths := fs.Args()
	if len(paths) == 0 {
		paths = config.Paths
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	driver := lint.NewDriver(syntax.NewParser())
	driver.SetJobs(opts.jobs)
	driver.SetExcludeFilter(config.Excluded)

	r := &runner{
		opts:         &opts,
		driver:       driver,
		effective:    effective,
		reporter:     reporter,
		minFailLevel: minFailLevel,
		stdout:       stdout,
		stderr:       stderr,
	}

	if opts.watchMode {
		return r.watchLoop(ctx, paths)
	}
	return r.runOnce(ctx, paths)
}

// runner holds everything one lint pass needs.
type runner struct {
	opts         *options
	driver       *lint.Driver
	effective    []lint.EffectiveRule
	reporter     lint.Reporter
	minFailLevel lint.Level
	stdout       io.Writer
	stderr       io.Writer
}

// runOnce executes a single lint pass over paths and reports it.
func (r *runner) runOnce(ctx context.Context, paths []string) int {
	result, err := r.driver.Run(ctx, paths, r.effective)
	if err != nil {
		cli.Writef(r.stderr, "phplint: %v\n", err)
		return cli.ExitError
	}

	if r.opts.generateBaseline {
		return r.generateBaseline(result)
	}

	if r.opts.baselinePath != "" {
		baseline, err := lint.LoadBaseline(r.opts.baselinePath)
		if err != nil {
			cli.Writef(r.stderr, "phplint: %v\n", err)
			return cli.ExitError
		}
		lint.ApplyBaseline(result, baseline)
	}

	if r.opts.fix {
		return r.applyFixes(ctx, result)
	}

	if r.opts.fixableOnly {
		result.Issues = lint.FilterFixable(result.Issues, r.fixThreshold())
	}
	if r.opts.sortBySeverity {
		lint.SortIssuesForDisplay(result.Issues)
	}

	if err := r.reporter.Report(r.stdout, result); err != nil {
		cli.Writef(r.stderr, "phplint: %v\n", err)
		return cli.ExitError
	}

	switch {
	case result.HasIssuesAtOrAbove(r.minFailLevel):
		return cli.ExitIssues
	case len(result.FileErrors) > 0 || len(result.RuleErrors) > 0:
		return cli.ExitError
	default:
		return cli.ExitOK
	}
}

// generateBaseline writes a baseline capturing the current issues.
func (r *runner) generateBaseline(result *lint.Result) int {
	path := r.opts.baselinePath
	if path == "" {
		path = defaultBaselinePath
	}

	baseline := lint.GenerateBaseline(result.Issues)
	if err := baseline.Save(path, r.opts.backupBaseline); err != nil {
		cli.Writef(r.stderr, "phplint: %v\n", err)
		return cli.ExitError
	}
	cli.Writef(r.stdout, "Baseline with %d entr%s written to %s\n",
		len(baseline.Entries), pluralY(len(baseline.Entries)), path)
	return cli.ExitOK
}

// applyFixes runs fix mode: write fixes, or print diffs with --dry-run.
func (r *runner) applyFixes(ctx context.Context, result *lint.Result) int {
	fixer := &lint.Fixer{
		Threshold: r.fixThreshold(),
		DryRun:    r.opts.dryRun,
	}
	if cmd := r.opts.formatAfterFix; cmd != "" {
		fixer.FormatAfterFix = formatCommand(ctx, cmd, r.stderr)
	}

	fixResults, fixErrors := fixer.Fix(result.Issues)

	applied, changedFiles := 0, 0
	var skipped []lint.SkippedFix
	for i := range fixResults {
		fr := &fixResults[i]
		applied += fr.Applied
		skipped = append(skipped, fr.Skipped...)
		if !fr.HasChanges() {
			continue
		}
		changedFiles++
		if r.opts.dryRun {
			cli.Write(r.stdout, fr.Diff())
		}
	}

	for _, sf := range skipped {
		cli.Writef(r.stderr, "note: %s\n", sf)
	}
	for _, fe := range fixErrors {
		cli.Writef(r.stderr, "phplint: %v\n", fe)
	}

	if r.opts.dryRun {
		cli.Writef(r.stdout, "Would apply %d fix(es) to %d file(s)\n", applied, changedFiles)
	} else {
		cli.Writef(r.stdout, "Applied %d fix(es) to %d file(s)\n", applied, changedFiles)
	}

	switch {
	case len(fixErrors) > 0:
		return cli.ExitError
	case r.opts.dryRun && changedFiles > 0:
		return cli.ExitIssues
	default:
		return cli.ExitOK
	}
}

// watchLoop runs an initial pass and then re-lints on file changes until
// interrupted.
func (r *runner) watchLoop(ctx context.Context, paths []string) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	watcher, err := watch.New(paths, lint.IsPHPFile)
	if err != nil {
		cli.Writef(r.stderr, "phplint: %v\n", err)
		return cli.ExitError
	}
	defer func() { _ = watcher.Close() }()

	code := r.runOnce(ctx, paths)
	cli.Writeln(r.stderr, "Watching for changes. Press Ctrl-C to stop.")

	for {
		select {
		case <-ctx.Done():
			return code
		case err := <-watcher.Errors:
			cli.Writef(r.stderr, "phplint: watch: %v\n", err)
		case changed := <-watcher.Events:
			cli.Writef(r.stderr, "\nChange detected (%d file(s)), re-linting...\n", len(changed))
			code = r.runOnce(ctx, paths)
		}
	}
}

// fixThreshold maps the safety flags to the maximum applied fix class.
func (r *runner) fixThreshold() lint.Safety {
	switch {
	case r.opts.unsafe:
		return lint.SafetyUnsafe
	case r.opts.potentiallyUnsafe:
		return lint.SafetyPotentiallyUnsafe
	default:
		return lint.SafetySafe
	}
}

// newReporter builds the reporter for the selected format, with color
// only on rich output to a terminal.
func newReporter(opts *options, stdout io.Writer) (lint.Reporter, error) {
	reporter, err := lint.NewReporter(opts.format)
	if err != nil {
		return nil, err
	}
	if rich, ok := reporter.(*lint.RichReporter); ok {
		rich.Color = useColor(opts, stdout)
	}
	return reporter, nil
}

// useColor respects --no-color, the NO_COLOR convention, and whether
// stdout is a terminal.
func useColor(opts *options, stdout io.Writer) bool {
	if opts.noColor {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// formatCommand wraps a user-supplied formatter command line into the
// fixer's per-file hook.
func formatCommand(ctx context.Context, command string, stderr io.Writer) func(path string) error {
	parts := strings.Fields(command)
	return func(path string) error {
		cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], path)...)
		cmd.Stdout = io.Discard
		cmd.Stderr = stderr
		return cmd.Run()
	}
}

// printRuleList writes one line per registered rule.
func printRuleList(w io.Writer, registry *lint.Registry) {
	for _, rule := range registry.All() {
		state := "on"
		if !rule.Default {
			state = "off"
		}
		cli.Writef(w, "%-26s %-8s %-16s %-4s %s\n",
			rule.Code, rule.Level, rule.Category, state, rule.Doc)
	}
}

// explainRule prints the full documentation for one rule.
func explainRule(stdout, stderr io.Writer, registry *lint.Registry, code string) int {
	rule, ok := registry.Rule(code)
	if !ok {
		cli.Writef(stderr, "phplint: unknown rule: %s\n", code)
		return cli.ExitError
	}

	cli.Writef(stdout, "%s\n\n%s\n\n", rule.Code, rule.Doc)
	cli.Writef(stdout, "Category: %s\n", rule.Category)
	cli.Writef(stdout, "Level:    %s\n", rule.Level)
	cli.Writef(stdout, "Default:  %s\n", map[bool]string{true: "enabled", false: "disabled"}[rule.Default])
	if rule.MinPHPVersion != "" {
		cli.Writef(stdout, "Requires: PHP >= %s\n", rule.MinPHPVersion)
	}
	if len(rule.Integrations) > 0 {
		cli.Writef(stdout, "Enabled by integrations: %s\n", strings.Join(rule.Integrations, ", "))
	}
	if len(rule.Options) > 0 {
		cli.Writeln(stdout, "\nOptions:")
		for _, opt := range rule.Options {
			cli.Writef(stdout, "  %s (%s, default %v)\n      %s\n", opt.Name, opt.Kind, opt.Default, opt.Doc)
		}
	}
	if rule.URL != "" {
		cli.Writef(stdout, "\nSee %s\n", rule.URL)
	}
	return cli.ExitOK
}

// splitRuleList parses a comma-separated rule list, dropping empties.
func splitRuleList(s string) []string {
	if s == "" {
		return nil
	}
	var codes []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
