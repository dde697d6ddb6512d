// Package taskpool implements a fixed-size pool of long-lived workers that
// execute functions concurrently and deliver results through job handles,
// modeled closely on Python's multiprocessing.Pool.
//
// Constructors
//   - New(ctx, *Config): accepts an explicit Config; a nil Config is
//     equivalent to a fully-defaulted one.
//   - NewOptions(ctx, opts ...Option): builds a Config from functional
//     Options starting at defaultConfig. Prefer this in new code.
//
// Submission modes
//   - Apply / ApplyAsync: run a single function once, get one result back.
//   - Map / MapAsync / Starmap / StarmapAsync: run a function over a slice
//     of elements, chunked across workers, blocking or non-blocking.
//   - Imap / ImapUnordered: stream per-element results as they complete,
//     in input order or arrival order respectively.
//
// Defaults
// Unless overridden, a newly constructed Pool uses:
//   - Processes: runtime.NumCPU(), minimum 1
//   - MaxTasksPerChild: 0 (unlimited)
//   - SubmissionBufferSize: 16
//   - InputBufferSize: 0 (unbuffered)
//   - OutputBufferSize: 1024
//   - SupervisorInterval: 100ms
//   - ErrorTagging: false
//   - Logger: zerolog.Nop()
//   - Metrics: a no-op metrics.Provider
//
// Lifecycle
// Close stops accepting new submissions and lets queued work drain.
// Terminate abandons queued and in-flight work immediately. Both are
// idempotent; either must be followed by Join to release the pool's
// goroutines. Scoped wraps construction, Terminate, and Join in one call for
// callers that don't need the pool to outlive a single block of code; work
// that fn did not wait for is abandoned when fn returns.
package taskpool
