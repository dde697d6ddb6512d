package taskpool

import "errors"

// Namespace prefixes every sentinel error exported by this package.
const Namespace = "taskpool"

var (
	// ErrInvalidState is returned when Join is called while the pool is still
	// running (before Close or Terminate).
	ErrInvalidState = errors.New(Namespace + ": pool is not accepting this operation in its current state")

	// ErrNotReady is returned when a submission (Apply, Map, Imap, ...) is
	// attempted after Close or Terminate has already been called.
	ErrNotReady = errors.New(Namespace + ": pool is no longer accepting submissions")

	// ErrTimeout is returned by Get/Next when the supplied context expires
	// before a result becomes available. It never alters the underlying task's state.
	ErrTimeout = errors.New(Namespace + ": timed out waiting for result")

	// ErrTaskPanicked wraps a recovered panic from task, initializer, or worker execution.
	ErrTaskPanicked = errors.New(Namespace + ": task execution panicked")
)
