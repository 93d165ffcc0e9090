package dag

// Outcome is the final state of a task in one run.
type Outcome int32

// Task outcomes.
const (
	Pending Outcome = iota
	Success
	NoSource
	Skipped
	Failed
	NotRun
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case NoSource:
		return "NO-SOURCE"
	case Skipped:
		return "SKIPPED"
	case Failed:
		return "FAILED"
	case NotRun:
		return "NOT-RUN"
	default:
		return "PENDING"
	}
}

// Satisfied reports whether dependents may run after a task ended this way.
func (o Outcome) Satisfied() bool {
	return o == Success || o == NoSource || o == Skipped
}
