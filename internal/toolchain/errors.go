package toolchain

import (
	"fmt"
	"strings"
)

// CompileError reports a compiler run that exited non-zero.
type CompileError struct {
	Task        string
	ExitCode    int
	Diagnostics string
}

func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compilation failed for task '%s' (exit code %d)", e.Task, e.ExitCode)
	if e.Diagnostics != "" {
		msg += ":\n" + e.Diagnostics
	}
	return msg
}

// TestFailureError reports a test run with failing tests.
type TestFailureError struct {
	Summary *Summary
}

func (e *TestFailureError) Error() string {
	failed := e.Summary.FailedTests()
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.ID())
	}
	return fmt.Sprintf("%d of %d tests failed: %s", e.Summary.Failed, e.Summary.Total, strings.Join(names, ", "))
}
