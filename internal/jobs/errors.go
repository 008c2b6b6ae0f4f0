package jobs

import "errors"

var (
	// ErrNotFound is returned when a job does not exist or is not visible to
	// the caller.
	ErrNotFound = errors.New("job not found")

	// ErrForbidden is returned when the caller does not own the job.
	ErrForbidden = errors.New("unauthorized access to job")

	// ErrAlreadyClaimed is returned when a dispatch attempt finds a live
	// processing lock. Not a user-visible failure, just a duplicate guard.
	ErrAlreadyClaimed = errors.New("job already claimed by another worker")

	// ErrTerminalState is returned when a write targets a job that already
	// reached ready, failed or cancelled.
	ErrTerminalState = errors.New("job is in a terminal state")

	// ErrInvalidTransition is returned when a status move violates the
	// forward-only lifecycle.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrLockActive is returned by the stale-job reset when the lock has not
	// expired yet.
	ErrLockActive = errors.New("processing lock has not expired")
)
