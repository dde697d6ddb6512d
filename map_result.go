package taskpool

import "sync"

// MapResult is the handle returned by MapAsync/StarmapAsync: the full
// ordered slice of results, delivered once every chunk has reported and the
// submission's length is known (spec.md §4.2, mirroring Python's
// map_async/starmap_async AsyncResult, whose .get() returns a list).
type MapResult[R any] struct {
	mu       sync.Mutex
	done     chan struct{}
	finished bool

	values   []R
	length   int
	lenKnown bool
	remain   int // elements delivered so far; complete once it reaches length
	err      error

	callback      func([]R)
	errorCallback func(error)
	onDone        func()
}

func (m *MapResult[R]) setOnDone(fn func()) {
	m.mu.Lock()
	m.onDone = fn
	m.mu.Unlock()
}

func newMapResult[R any](onSuccess func([]R), onError func(error)) *MapResult[R] {
	return &MapResult[R]{
		done:          make(chan struct{}),
		callback:      onSuccess,
		errorCallback: onError,
	}
}

func (m *MapResult[R]) ensureCap(n int) {
	if len(m.values) < n {
		grown := make([]R, n)
		copy(grown, m.values)
		m.values = grown
	}
}

func (m *MapResult[R]) deliverSingle(index int, value R, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.ensureCap(index + 1)
	m.values[index] = value
	m.remain++
	complete := m.lenKnown && m.remain >= m.length
	m.mu.Unlock()
	if complete {
		m.succeed()
	}
}

func (m *MapResult[R]) deliverChunk(base, length int, values []R, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.ensureCap(base + length)
	copy(m.values[base:base+length], values)
	m.remain += length
	complete := m.lenKnown && m.remain >= m.length
	m.mu.Unlock()
	if complete {
		m.succeed()
	}
}

func (m *MapResult[R]) setLength(n int) {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.length = n
	m.lenKnown = true
	m.ensureCap(n)
	complete := m.remain >= n
	m.mu.Unlock()
	if complete {
		m.succeed()
	}
}

// succeed finishes the job with the accumulated values, once: a second
// caller racing in (e.g. setLength and the final deliverChunk both
// observing completeness) is a no-op.
func (m *MapResult[R]) succeed() {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.finishLocked(m.values, nil)
	values := m.values
	m.mu.Unlock()
	m.fireCallbacks(values, nil)
}

// fail finishes the job with err, once.
func (m *MapResult[R]) fail(err error) {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return
	}
	m.finishLocked(nil, err)
	m.mu.Unlock()
	m.fireCallbacks(nil, err)
}

// finishLocked must be called with mu held and must not be called twice.
func (m *MapResult[R]) finishLocked(values []R, err error) {
	if m.finished {
		return
	}
	m.values, m.err, m.finished = values, err, true
	close(m.done)
	if m.onDone != nil {
		m.onDone()
	}
}

func (m *MapResult[R]) fireCallbacks(values []R, err error) {
	if err != nil {
		safeCall(func() {
			if m.errorCallback != nil {
				m.errorCallback(err)
			}
		})
		return
	}
	safeCall(func() {
		if m.callback != nil {
			m.callback(values)
		}
	})
}

// Ready reports whether the job has completed.
func (m *MapResult[R]) Ready() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Get blocks until the job completes (or done fires) and returns the full
// ordered result slice.
func (m *MapResult[R]) Get(done <-chan struct{}) ([]R, error) {
	select {
	case <-m.done:
	case <-done:
		return nil, ErrTimeout
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values, m.err
}
