package taskpool

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/corwin-dev/taskpool/metrics"
)

// workerSlot pairs a worker's Executor with the function that (re)spawns a
// fresh workerLoop on it, so the supervisor can replace a dead worker
// without the rest of the pool knowing a respawn happened. stopped is set
// once the pool is shutting down so the supervisor stops replacing workers
// it would otherwise see as "unexpectedly dead".
type workerSlot struct {
	id       int
	executor Executor
	spawn    func(Executor)
	stopped  atomic.Bool
}

// supervisor periodically scans worker slots for exited executors and
// respawns them (spec.md §4.1, "_handle_workers": "the supervisor thread
// notices a dead worker and starts a replacement"). It never inspects task
// content; it only watches Alive()/ExitErr().
type supervisor struct {
	interval    time.Duration
	slots       []*workerSlot
	newExecutor func() Executor
	logger      zerolog.Logger
	instr       *metrics.TaskInstruments
}

func newSupervisor(interval time.Duration, slots []*workerSlot, newExecutor func() Executor, logger zerolog.Logger, instr *metrics.TaskInstruments) *supervisor {
	return &supervisor{interval: interval, slots: slots, newExecutor: newExecutor, logger: logger, instr: instr}
}

func (s *supervisor) run(ctx context.Context) {
	if s.interval <= 0 {
		s.interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

func (s *supervisor) scan(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	for _, slot := range s.slots {
		if slot.executor.Alive() || slot.stopped.Load() {
			continue
		}

		if err := slot.executor.ExitErr(); err != nil {
			s.logger.Warn().
				Err(err).
				Int("worker_id", slot.id).
				Msg("taskpool: worker exited abnormally, respawning")
		} else {
			s.logger.Debug().
				Int("worker_id", slot.id).
				Msg("taskpool: worker exited, respawning")
		}
		if s.instr != nil {
			s.instr.WorkerRestarts.Add(1)
		}

		next := slot.spawn
		if next == nil {
			continue
		}
		newExec := s.newExecutor
		if newExec == nil {
			newExec = func() Executor { return newGoroutineExecutor() }
		}
		executor := newExec()
		slot.executor = executor
		next(executor)
	}
}
