package cli

import (
	"fmt"
	"io"
)

// Writef writes formatted output to the writer.
//
// Write errors are intentionally ignored: these helpers target
// stdout/stderr, where there is no reasonable recovery if the terminal or
// pipe is broken, and the exit code still reflects the operation status.
func Writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// Writeln writes a line to the writer, ignoring write errors.
func Writeln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// Write writes a string to the writer, ignoring write errors.
func Write(w io.Writer, s string) {
	_, _ = io.WriteString(w, s)
}
