package taskpool

import (
	"context"
	"sync"
)

// outcome is one element's resolved value/error, used internally by both
// iterator flavors below.
type outcome[R any] struct {
	index int
	value R
	err   error
}

// waker implements a close-and-replace broadcast channel so Next(ctx) can
// select between "new data arrived" and ctx.Done() without sync.Cond, which
// has no native way to participate in a select (spec.md §4.2, Imap/
// ImapUnordered "blocking, context-aware iteration").
type waker struct {
	mu sync.Mutex
	ch chan struct{}
}

func newWaker() *waker { return &waker{ch: make(chan struct{})} }

func (w *waker) wait() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ch
}

func (w *waker) wake() {
	w.mu.Lock()
	defer w.mu.Unlock()
	close(w.ch)
	w.ch = make(chan struct{})
}

// IMapIterator streams results for one Imap submission in input order
// (spec.md §4.2, mirroring Python's IMapIterator: imap()). Next blocks until
// the next in-order element is ready, the job is exhausted, or ctx is done.
type IMapIterator[R any] struct {
	mu        sync.Mutex
	w         *waker
	pending   map[int]outcome[R]
	nextIdx   int
	length    int
	lenKnown  bool
	done      bool
	delivered int // elements received from the demultiplexer so far
	doneFired bool
	onDone    func()
}

func newIMapIterator[R any]() *IMapIterator[R] {
	return &IMapIterator[R]{w: newWaker(), pending: make(map[int]outcome[R])}
}

func (it *IMapIterator[R]) setOnDone(fn func()) {
	it.mu.Lock()
	it.onDone = fn
	it.mu.Unlock()
}

// maybeFireDone must be called with mu held; it fires onDone exactly once,
// the moment every outcome the submission will ever produce has arrived
// (spec.md §3 cache-eviction invariant) — independent of whether a caller
// has consumed them yet via Next.
func (it *IMapIterator[R]) maybeFireDone() func() {
	if it.doneFired || !it.lenKnown || it.delivered < it.length {
		return nil
	}
	it.doneFired = true
	return it.onDone
}

func (it *IMapIterator[R]) deliverSingle(index int, value R, err error) {
	it.mu.Lock()
	it.pending[index] = outcome[R]{index: index, value: value, err: err}
	it.delivered++
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

func (it *IMapIterator[R]) deliverChunk(base, length int, values []R, err error) {
	it.mu.Lock()
	for i := 0; i < length; i++ {
		if err != nil {
			it.pending[base+i] = outcome[R]{index: base + i, err: err}
			continue
		}
		it.pending[base+i] = outcome[R]{index: base + i, value: values[i]}
	}
	it.delivered += length
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

func (it *IMapIterator[R]) setLength(n int) {
	it.mu.Lock()
	it.length, it.lenKnown = n, true
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

// Next blocks until the element at the current iteration position is
// available, returns it, and advances. ok is false once every element has
// been delivered (exhaustion is not itself an error).
func (it *IMapIterator[R]) Next(ctx context.Context) (value R, err error, ok bool) {
	for {
		it.mu.Lock()
		if it.lenKnown && it.nextIdx >= it.length {
			it.mu.Unlock()
			var zero R
			return zero, nil, false
		}
		o, have := it.pending[it.nextIdx]
		if have {
			delete(it.pending, it.nextIdx)
			it.nextIdx++
		}
		waitCh := it.w.wait()
		it.mu.Unlock()

		if have {
			return o.value, o.err, true
		}

		select {
		case <-waitCh:
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err(), true
		}
	}
}

// IMapUnorderedIterator streams results as they complete, in arrival order
// rather than input order (spec.md §4.2, mirroring Python's
// IMapUnorderedIterator: imap_unordered()).
type IMapUnorderedIterator[R any] struct {
	mu        sync.Mutex
	w         *waker
	queue     []outcome[R]
	length    int
	lenKnown  bool
	emitted   int
	delivered int // elements received from the demultiplexer so far
	doneFired bool
	onDone    func()
}

func newIMapUnorderedIterator[R any]() *IMapUnorderedIterator[R] {
	return &IMapUnorderedIterator[R]{w: newWaker()}
}

func (it *IMapUnorderedIterator[R]) setOnDone(fn func()) {
	it.mu.Lock()
	it.onDone = fn
	it.mu.Unlock()
}

// maybeFireDone must be called with mu held; see IMapIterator.maybeFireDone.
func (it *IMapUnorderedIterator[R]) maybeFireDone() func() {
	if it.doneFired || !it.lenKnown || it.delivered < it.length {
		return nil
	}
	it.doneFired = true
	return it.onDone
}

func (it *IMapUnorderedIterator[R]) deliverSingle(index int, value R, err error) {
	it.mu.Lock()
	it.queue = append(it.queue, outcome[R]{index: index, value: value, err: err})
	it.delivered++
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

func (it *IMapUnorderedIterator[R]) deliverChunk(base, length int, values []R, err error) {
	it.mu.Lock()
	for i := 0; i < length; i++ {
		if err != nil {
			it.queue = append(it.queue, outcome[R]{index: base + i, err: err})
			continue
		}
		it.queue = append(it.queue, outcome[R]{index: base + i, value: values[i]})
	}
	it.delivered += length
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

func (it *IMapUnorderedIterator[R]) setLength(n int) {
	it.mu.Lock()
	it.length, it.lenKnown = n, true
	fire := it.maybeFireDone()
	it.mu.Unlock()
	it.w.wake()
	if fire != nil {
		fire()
	}
}

// Next blocks until any element is available, returns it, and advances.
func (it *IMapUnorderedIterator[R]) Next(ctx context.Context) (value R, err error, ok bool) {
	for {
		it.mu.Lock()
		if it.lenKnown && it.emitted >= it.length && len(it.queue) == 0 {
			it.mu.Unlock()
			var zero R
			return zero, nil, false
		}
		if len(it.queue) > 0 {
			o := it.queue[0]
			it.queue = it.queue[1:]
			it.emitted++
			it.mu.Unlock()
			return o.value, o.err, true
		}
		waitCh := it.w.wait()
		it.mu.Unlock()

		select {
		case <-waitCh:
		case <-ctx.Done():
			var zero R
			return zero, ctx.Err(), true
		}
	}
}
