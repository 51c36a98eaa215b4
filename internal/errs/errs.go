// internal/errs/errs.go
package errs

import "errors"

// Sentinel errors shared by the store, jobs and interactive handlers. Callers
// match them with errors.Is and map them to a single user-visible reply.
var (
	// ErrNotFound: the lobby, session or competitor does not exist where the
	// operation requires it. Reported to the caller, never retried.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed: a precondition observed before the conditional
	// update did not hold (missing role, lobby already claimed, schedule
	// inside the claim lockout window). Reported to the caller, never retried.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrConflictLost: a conditional update affected zero rows, the operation
	// lost an expected race. This is a normal outcome, not an exception path;
	// it must never be logged as an error.
	ErrConflictLost = errors.New("conflict: lost the race")

	// ErrDeliveryFailed: a notification could not be delivered after the
	// bounded retry budget. The job is dead-lettered for operator inspection.
	ErrDeliveryFailed = errors.New("notification delivery failed")
)
