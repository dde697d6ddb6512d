package taskpool

import (
	"context"
	"fmt"
	"time"

	"github.com/corwin-dev/taskpool/metrics"
)

// workerLoop is run on an Executor. It runs the (optional) initializer once,
// then pulls taskItems from input until input is closed (the pool's
// shutdown broadcast, spec.md §5 "N sentinels, one per worker" — realized
// here as a single close since every worker ranges over the same channel)
// or it has executed maxTasks tasks, whichever comes first (spec.md §4.1,
// "max-tasks-per-child").
//
// A panicking task is recovered and reported as a task-level failure, never
// as a worker death (spec.md §7: "a panic inside a task is caught and
// reported as a task error; it must not escape and kill the worker").
type workerLoop[R any] struct {
	id         int
	input      <-chan taskItem[R]
	output     chan<- workerOutcome[R]
	maxTasks   uint
	initFn     func(context.Context) error
	instr      *metrics.TaskInstruments
	errTagging bool
}

func (w *workerLoop[R]) run(ctx context.Context) error {
	if w.instr != nil {
		w.instr.ActiveWorkers.Add(1)
		defer w.instr.ActiveWorkers.Add(-1)
	}

	if w.initFn != nil {
		if err := w.runInitializer(ctx); err != nil {
			return err
		}
	}

	var executed uint
	for {
		if w.maxTasks > 0 && executed >= w.maxTasks {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case item, ok := <-w.input:
			if !ok {
				return nil
			}
			w.execute(ctx, item)
			executed++
		}
	}
}

func (w *workerLoop[R]) runInitializer(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: initializer panicked: %v", ErrTaskPanicked, r)
		}
	}()
	return w.initFn(ctx)
}

func (w *workerLoop[R]) execute(ctx context.Context, item taskItem[R]) {
	outcome := workerOutcome[R]{
		jobID:     item.jobID,
		index:     item.index,
		kind:      item.kind,
		chunkBase: item.chunkBase,
		chunkLen:  item.chunkLen,
	}

	start := time.Now()
	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome.success = false
				outcome.err = w.tagErr(fmt.Errorf("%w: %v", ErrTaskPanicked, r), item)
			}
		}()

		switch item.kind {
		case kindChunk:
			values, err := item.runChunk(ctx)
			if err != nil {
				outcome.success = false
				outcome.err = w.tagErr(err, item)
				return
			}
			outcome.success = true
			outcome.values = values
		default:
			value, err := item.runSingle(ctx)
			if err != nil {
				outcome.success = false
				outcome.err = w.tagErr(err, item)
				return
			}
			outcome.success = true
			outcome.value = value
		}
	}()

	if w.instr != nil {
		w.instr.TaskDuration.Record(time.Since(start).Seconds())
		if outcome.success {
			w.instr.TasksCompleted.Add(1)
		} else {
			w.instr.TasksFailed.Add(1)
		}
	}

	select {
	case w.output <- outcome:
	case <-ctx.Done():
	}
}

func (w *workerLoop[R]) tagErr(err error, item taskItem[R]) error {
	if !w.errTagging {
		return err
	}
	return newJobTaggedError(err, item.jobID, item.index)
}
