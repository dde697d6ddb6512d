package taskpool

import (
	"sync"
)

// handle is the demultiplexer-facing side of a job handle: whatever is
// waiting on a job's results (ApplyResult, MapResult, or one of the imap
// iterators) implements it so the demultiplexer can deliver outcomes without
// knowing which flavor of handle it is feeding (spec.md §4.4, "one result-
// delivery interface shared by every dispatch mode").
type handle[R any] interface {
	// deliverSingle delivers the outcome of a kindSingle task at index.
	deliverSingle(index int, value R, err error)

	// deliverChunk delivers the outcome of a kindChunk task covering
	// [base, base+length). On failure values is nil and err is non-nil;
	// length is still required so streaming handles can advance past the
	// whole chunk.
	deliverChunk(base, length int, values []R, err error)

	// setLength records the total element count once a submission's task
	// generator is exhausted, letting the handle know when it has seen
	// every outcome it will ever see.
	setLength(n int)

	// setOnDone registers fn to run exactly once, the moment the handle has
	// received every outcome it will ever receive (success, error, or a
	// streaming handle's last element). Pool.submit uses this to evict the
	// handle from the job cache as soon as the demultiplexer is done with
	// it, independent of whether a caller has read the result yet (spec.md
	// §3, "a job handle is in the cache iff its completion event is
	// unset").
	setOnDone(fn func())
}

// safeCall recovers a panicking callback so a caller-supplied iteration or
// completion hook can never take down dispatcher/demultiplexer internals
// (spec.md §7, "a callback that panics must not propagate into pool
// internals").
func safeCall(fn func()) {
	if fn == nil {
		return
	}
	defer func() { _ = recover() }()
	fn()
}

// ApplyResult is the handle returned by ApplyAsync: a single eventual value
// or error (spec.md §4.2, mirroring Python's AsyncResult for apply_async).
type ApplyResult[R any] struct {
	mu       sync.Mutex
	done     chan struct{}
	value    R
	err      error
	finished bool

	callback      func(R)
	errorCallback func(error)
	onDone        func()
}

func newApplyResult[R any](onSuccess func(R), onError func(error)) *ApplyResult[R] {
	return &ApplyResult[R]{
		done:          make(chan struct{}),
		callback:      onSuccess,
		errorCallback: onError,
	}
}

func (a *ApplyResult[R]) setOnDone(fn func()) {
	a.mu.Lock()
	a.onDone = fn
	a.mu.Unlock()
}

func (a *ApplyResult[R]) deliverSingle(_ int, value R, err error) {
	a.mu.Lock()
	if a.finished {
		a.mu.Unlock()
		return
	}
	a.value, a.err, a.finished = value, err, true
	onDone := a.onDone
	a.mu.Unlock()
	close(a.done)
	if onDone != nil {
		onDone()
	}

	if err != nil {
		safeCall(func() {
			if a.errorCallback != nil {
				a.errorCallback(err)
			}
		})
		return
	}
	safeCall(func() {
		if a.callback != nil {
			a.callback(value)
		}
	})
}

// deliverChunk is never called for an ApplyResult: Apply/ApplyAsync never
// chunk. Present only to satisfy the handle interface.
func (a *ApplyResult[R]) deliverChunk(int, int, []R, error) {}

// setLength is a no-op for ApplyResult: a single-task job has no notion of
// total element count to track completion against.
func (a *ApplyResult[R]) setLength(int) {}

// Ready reports whether the job has completed.
func (a *ApplyResult[R]) Ready() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Successful reports whether the job completed without error. Panics if the
// job has not completed, mirroring Python's AsyncResult.successful().
func (a *ApplyResult[R]) Successful() bool {
	if !a.Ready() {
		panic("taskpool: Successful called before job completion")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err == nil
}

// Wait blocks until the job completes or done is closed.
func (a *ApplyResult[R]) Wait(done <-chan struct{}) {
	select {
	case <-a.done:
	case <-done:
	}
}

// Get blocks until the job completes (or done fires) and returns its value
// and error.
func (a *ApplyResult[R]) Get(done <-chan struct{}) (R, error) {
	select {
	case <-a.done:
	case <-done:
		var zero R
		return zero, ErrTimeout
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, a.err
}
