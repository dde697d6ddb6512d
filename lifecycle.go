package taskpool

import "sync"

// lifecycleCoordinator encapsulates Pool's two-tier shutdown sequence as a
// wiring helper: it doesn't own channels or goroutines itself, it just
// orchestrates the deterministic order in which they get told to stop
// (spec.md §5, Close vs Terminate vs Join as three separable calls, same
// shape as Python's Pool.close()/terminate()/join()).
//
// Close and Terminate are each safe for concurrent calls; their sequences
// run exactly once apiece. Terminate always runs Close's sequence first, so
// a caller that only ever calls Terminate still stops new submissions.
type lifecycleCoordinator struct {
	closeSubmissions func() // stop accepting new work
	stopWorkers      func() // mark workers as not-to-be-respawned, ask them to stop
	cancel           func() // cancel the pool-wide context

	closeOnce     sync.Once
	terminateOnce sync.Once
}

func newLifecycleCoordinator(closeSubmissions, stopWorkers, cancel func()) *lifecycleCoordinator {
	return &lifecycleCoordinator{
		closeSubmissions: closeSubmissions,
		stopWorkers:      stopWorkers,
		cancel:           cancel,
	}
}

// Close runs the graceful-shutdown sequence exactly once: stop accepting
// submissions and let whatever is already queued drain on its own.
func (lc *lifecycleCoordinator) Close() {
	lc.closeOnce.Do(func() {
		if lc.closeSubmissions != nil {
			lc.closeSubmissions()
		}
	})
}

// Terminate runs the immediate-shutdown sequence exactly once: Close first,
// then stop respawning workers and cancel the pool's context so in-flight
// and queued work is abandoned.
func (lc *lifecycleCoordinator) Terminate() {
	lc.Close()
	lc.terminateOnce.Do(func() {
		if lc.stopWorkers != nil {
			lc.stopWorkers()
		}
		if lc.cancel != nil {
			lc.cancel()
		}
	})
}
