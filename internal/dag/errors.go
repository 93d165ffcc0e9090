package dag

import "fmt"

// GraphError reports a task graph that cannot be executed: an unknown task
// name, a dangling dependency or a cycle.
type GraphError struct {
	Task   string
	Reason string
}

func (e *GraphError) Error() string {
	if e.Task == "" {
		return "task graph: " + e.Reason
	}
	return fmt.Sprintf("task graph: '%s': %s", e.Task, e.Reason)
}
