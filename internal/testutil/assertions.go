package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertTaskRan checks the log output to confirm that a task finished with
// the given outcome ("SUCCESS", "NO-SOURCE").
func AssertTaskRan(t *testing.T, result *HarnessResult, task, outcome string) {
	t.Helper()
	want := fmt.Sprintf("task=%s outcome=%s", task, outcome)
	require.True(t,
		strings.Contains(result.LogOutput, want),
		"expected task '%s' to finish with %s; not found in logs", task, outcome,
	)
}

// AssertTaskNotStarted checks that a task never started running.
func AssertTaskNotStarted(t *testing.T, result *HarnessResult, task string) {
	t.Helper()
	require.False(t, started(result.LogOutput, task), "expected task '%s' not to run", task)
}

func started(logs, task string) bool {
	for _, line := range strings.Split(logs, "\n") {
		if !strings.Contains(line, "Running task.") {
			continue
		}
		if strings.Contains(line, " task="+task+" ") || strings.HasSuffix(line, " task="+task) {
			return true
		}
	}
	return false
}
