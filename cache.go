package taskpool

import (
	"sync"
	"sync/atomic"
)

// jobID identifies one Apply/Map/Imap submission across its lifetime on the
// input/output channels. IDs are assigned from a single package-level
// counter shared by every Pool instance regardless of result type R, so a
// demultiplexer never has to worry about collisions across pools sharing a
// process (spec.md §4.3, "job-id: process-wide unique").
type jobID uint64

var globalJobID atomic.Uint64

func nextJobID() jobID {
	return jobID(globalJobID.Add(1))
}

// handleCache is the mutex-guarded job-id -> handle map the result
// demultiplexer consults to route each incoming outcome (spec.md §4.3,
// "cache: a shared map from job-id to job handle, guarded by a lock").
type handleCache[R any] struct {
	mu sync.Mutex
	m  map[jobID]handle[R]
}

func newHandleCache[R any]() *handleCache[R] {
	return &handleCache[R]{m: make(map[jobID]handle[R])}
}

func (c *handleCache[R]) put(id jobID, h handle[R]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[id] = h
}

func (c *handleCache[R]) get(id jobID) (handle[R], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.m[id]
	return h, ok
}

func (c *handleCache[R]) delete(id jobID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, id)
}

func (c *handleCache[R]) empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m) == 0
}
