// Package cmdtest provides a testscript-based test harness for the
// phplint CLI.
//
// It uses txtar format test files to specify input files and expected
// outputs, making it easy to write comprehensive CLI tests.
//
// Example test file (testdata/phplint/no_eval.txtar):
//
//	# Flag eval() as an error
//	! exec phplint --no-color test.php
//	stdout 'no-eval'
//
//	-- test.php --
//	<?php
//	eval($code);
package cmdtest

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/yigitcukuren/mago-sub000/internal/cmd/phplint"
)

// Run executes the testscript tests in the given directory.
func Run(t *testing.T, dir string) {
	testscript.Run(t, testscript.Params{
		Dir: dir,
	})
}

// Main is the TestMain function that should be called from test files.
// It sets up the CLI as a testscript command.
func Main(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"phplint": wrapRun(phplint.Run),
	}))
}

// wrapRun wraps a Run(args []string) int function to func() int for
// testscript. The args are taken from os.Args[1:].
func wrapRun(run func(args []string) int) func() int {
	return func() int {
		return run(os.Args[1:])
	}
}
