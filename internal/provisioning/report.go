package provisioning

import "github.com/google/uuid"

// ActionStatus is the execution outcome of a single planned action.
type ActionStatus string

const (
	StatusCompleted    ActionStatus = "completed"
	StatusFailed       ActionStatus = "failed"
	StatusNotAttempted ActionStatus = "not-attempted"
)

// ActionResult pairs a planned action with its execution outcome.
type ActionResult struct {
	Action Action
	Status ActionStatus
	Err    error
}

// ExecutionReport records what happened to every action of a plan.
// After a mid-plan failure it shows the completed prefix, the failing
// action with its cause, and the untouched remainder, so a repeated
// reconciliation naturally resumes from the failure point.
type ExecutionReport struct {
	RunID   string
	Results []ActionResult
}

// NewExecutionReport creates an empty report with a fresh run ID.
func NewExecutionReport() *ExecutionReport {
	return &ExecutionReport{RunID: uuid.NewString()}
}

// Record appends an action outcome.
func (r *ExecutionReport) Record(a Action, status ActionStatus, err error) {
	r.Results = append(r.Results, ActionResult{Action: a, Status: status, Err: err})
}

// Completed returns the actions that finished successfully.
func (r *ExecutionReport) Completed() []ActionResult {
	return r.filter(StatusCompleted)
}

// Failed returns the failing action, or nil when execution succeeded.
func (r *ExecutionReport) Failed() *ActionResult {
	for i := range r.Results {
		if r.Results[i].Status == StatusFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// NotAttempted returns the actions skipped after a failure or
// cancellation.
func (r *ExecutionReport) NotAttempted() []ActionResult {
	return r.filter(StatusNotAttempted)
}

func (r *ExecutionReport) filter(status ActionStatus) []ActionResult {
	var out []ActionResult
	for _, res := range r.Results {
		if res.Status == status {
			out = append(out, res)
		}
	}
	return out
}
