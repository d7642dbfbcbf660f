package tasks

import "fmt"

type OutcomeStatus string

const (
	OutcomeOK      OutcomeStatus = "ok"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the result of a load, export or import. These operations never
// return errors; a failure is reported here and logged.
type Outcome struct {
	Status OutcomeStatus
	// Count is the number of tasks loaded, exported or imported.
	Count int
	// Skipped counts import rows with too few fields.
	Skipped int
	Err     error
}

func (o Outcome) OK() bool {
	return o.Status == OutcomeOK
}

func (o Outcome) String() string {
	switch o.Status {
	case OutcomeFailed:
		return fmt.Sprintf("failed after %d tasks: %s", o.Count, o.Err)
	case OutcomeSkipped:
		return "nothing to do"
	default:
		if o.Skipped > 0 {
			return fmt.Sprintf("%d tasks, %d rows skipped", o.Count, o.Skipped)
		}
		return fmt.Sprintf("%d tasks", o.Count)
	}
}

func failed(count int, err error) Outcome {
	return Outcome{Status: OutcomeFailed, Count: count, Err: err}
}
