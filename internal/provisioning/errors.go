package provisioning

import "fmt"

// BackendUnavailableError indicates a transport-level failure talking to
// the backend. Calls are retried with backoff before this surfaces; a
// not-found sub-resource is never a transport failure.
type BackendUnavailableError struct {
	Op  string
	Err error
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendUnavailableError) Unwrap() error { return e.Err }

// ConflictError indicates a naming collision or a concurrent
// modification detected by the backend. It identifies the conflicting
// resource and is never auto-resolved: a colliding bucket name usually
// means the caller reused an identity incorrectly, and silently minting
// a new suffix would mask that bug.
type ConflictError struct {
	Resource string
	Name     string
	Err      error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %q: %v", e.Resource, e.Name, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// PermissionError indicates the backend rejected a call for lack of
// permission. Fatal; surfaced verbatim, never retried.
type PermissionError struct {
	Op  string
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied during %s: %v", e.Op, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// PartialExecutionError indicates some plan actions succeeded before one
// failed. It carries the full report so the caller can decide whether to
// retry the same spec, which is always safe: every individual action is
// idempotent, so a repeated run resumes from the failure point.
type PartialExecutionError struct {
	Report *ExecutionReport
	Err    error
}

func (e *PartialExecutionError) Error() string {
	failed := e.Report.Failed()
	if failed == nil {
		return fmt.Sprintf("partial execution: %v", e.Err)
	}
	return fmt.Sprintf("partial execution: %d of %d actions completed, %s failed: %v",
		len(e.Report.Completed()), len(e.Report.Results), failed.Action.Target(), e.Err)
}

func (e *PartialExecutionError) Unwrap() error { return e.Err }
