package taskpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/corwin-dev/taskpool/metrics"
)

const (
	stateRunning int32 = iota
	stateClosing
	stateTerminated
)

// Pool is a fixed-size group of long-lived workers that execute submitted
// tasks concurrently and deliver results through job handles (spec.md §1-§4,
// mirroring Python's multiprocessing.Pool). A Pool is safe for concurrent
// use by multiple goroutines.
type Pool[R any] struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	submissions chan submission[R]
	input       chan taskItem[R]
	output      chan workerOutcome[R]

	cache *handleCache[R]
	slots []*workerSlot
	instr *metrics.TaskInstruments

	internalWG sync.WaitGroup // dispatcher + demultiplexer + supervisor
	workersWG  sync.WaitGroup // one per worker slot

	state     atomic.Int32
	lifecycle *lifecycleCoordinator
}

// New constructs a Pool from an explicit Config. A nil cfg is equivalent to
// defaultConfig(). Prefer NewOptions for functional-option construction.
func New[R any](ctx context.Context, cfg *Config) (*Pool[R], error) {
	if cfg == nil {
		c := defaultConfig()
		cfg = &c
	}
	resolved := *cfg
	if resolved.Processes == 0 {
		d := defaultConfig()
		resolved.Processes = d.Processes
	}
	if resolved.SupervisorInterval <= 0 {
		resolved.SupervisorInterval = defaultConfig().SupervisorInterval
	}
	// zerolog.Logger's zero value is safe to call: with no writer set, its
	// events are built and then discarded rather than panicking, so an
	// unset Logger field needs no defaulting here.
	if resolved.Metrics == nil {
		resolved.Metrics = defaultConfig().Metrics
	}
	if err := validateConfig(&resolved); err != nil {
		return nil, err
	}

	pctx, cancel := context.WithCancel(ctx)

	p := &Pool[R]{
		cfg:         resolved,
		ctx:         pctx,
		cancel:      cancel,
		submissions: make(chan submission[R], resolved.SubmissionBufferSize),
		input:       make(chan taskItem[R], resolved.InputBufferSize),
		output:      make(chan workerOutcome[R], resolved.OutputBufferSize),
		cache:       newHandleCache[R](),
		instr:       metrics.NewTaskInstruments(resolved.Metrics),
	}

	p.slots = make([]*workerSlot, resolved.Processes)
	for i := range p.slots {
		id := i
		slot := &workerSlot{id: id}
		slot.spawn = func(ex Executor) { p.runWorker(ex, id) }
		slot.executor = p.newExecutor()
		p.slots[i] = slot
		p.runWorker(slot.executor, id)
	}

	disp := newDispatcher(p.submissions, p.input)
	p.internalWG.Add(1)
	go func() {
		defer p.internalWG.Done()
		disp.run(p.ctx)
		// Dispatcher is the sole writer on input; once it's done feeding
		// (submissions drained or ctx canceled) close it so every worker's
		// range-like read loop sees shutdown (spec.md §5, "closing the
		// single-writer input channel broadcasts shutdown to all workers").
		close(p.input)
	}()

	demux := newDemultiplexer(p.output, p.cache, p.cfg.Logger)
	p.internalWG.Add(1)
	go func() { defer p.internalWG.Done(); demux.run(p.ctx) }()

	sup := newSupervisor(p.cfg.SupervisorInterval, p.slots, func() Executor { return p.newExecutor() }, p.cfg.Logger, p.instr)
	p.internalWG.Add(1)
	go func() { defer p.internalWG.Done(); sup.run(p.ctx) }()

	p.lifecycle = newLifecycleCoordinator(
		func() {
			p.state.Store(stateClosing)
			close(p.submissions)
		},
		func() {
			p.state.Store(stateTerminated)
			for _, slot := range p.slots {
				slot.stopped.Store(true)
				slot.executor.Terminate()
			}
		},
		p.cancel,
	)

	return p, nil
}

func (p *Pool[R]) newExecutor() Executor {
	if p.cfg.ExecutorFactory != nil {
		return p.cfg.ExecutorFactory()
	}
	return newGoroutineExecutor()
}

func (p *Pool[R]) runWorker(ex Executor, id int) {
	wl := &workerLoop[R]{
		id:         id,
		input:      p.input,
		output:     p.output,
		maxTasks:   p.cfg.MaxTasksPerChild,
		initFn:     p.cfg.Initializer,
		instr:      p.instr,
		errTagging: p.cfg.ErrorTagging,
	}
	p.workersWG.Add(1)
	_ = ex.Start(func() {
		defer p.workersWG.Done()
		if err := wl.run(p.ctx); err != nil {
			p.cfg.Logger.Error().Err(err).Int("worker_id", id).Msg("taskpool: worker initializer failed")
		}
	})
}

func (p *Pool[R]) checkAcceptingState() error {
	switch p.state.Load() {
	case stateClosing, stateTerminated:
		return ErrNotReady
	default:
		return nil
	}
}

// submit registers h under a fresh job-id and enqueues sub (with that job-id
// stamped in) onto the submission queue.
func (p *Pool[R]) submit(h handle[R], build func(jobID) submission[R]) (jobID, error) {
	if err := p.checkAcceptingState(); err != nil {
		return 0, err
	}
	id := nextJobID()
	h.setOnDone(func() { p.cache.delete(id) })
	p.cache.put(id, h)
	sub := build(id)
	sub.jobID = id

	select {
	case p.submissions <- sub:
		return id, nil
	case <-p.ctx.Done():
		p.cache.delete(id)
		return 0, ErrNotReady
	}
}

// ApplyAsync schedules fn for execution and returns immediately with a
// handle for its eventual result (spec.md §4.2, mirroring apply_async).
// onSuccess/onError, if non-nil, run once the result arrives.
func (p *Pool[R]) ApplyAsync(fn func(context.Context) (R, error), onSuccess func(R), onError func(error)) (*ApplyResult[R], error) {
	ar := newApplyResult[R](onSuccess, onError)
	_, err := p.submit(ar, func(id jobID) submission[R] {
		return submission[R]{jobID: id, next: singleTaskGenerator(fn)}
	})
	if err != nil {
		return nil, err
	}
	return ar, nil
}

// Apply is blocking sugar over ApplyAsync + Get (spec.md §4.2, mirroring
// Python's Pool.apply as a thin wrapper over apply_async().get()).
func (p *Pool[R]) Apply(ctx context.Context, fn func(context.Context) (R, error)) (R, error) {
	ar, err := p.ApplyAsync(fn, nil, nil)
	if err != nil {
		var zero R
		return zero, err
	}
	return ar.Get(ctx.Done())
}

// Close stops accepting new submissions and lets already-queued work drain:
// the dispatcher and the workers exit once the queued work has been fed and
// executed, while the demultiplexer and supervisor stop in Join (spec.md
// §5, mirroring Pool.close()). It is idempotent and safe for concurrent
// callers.
func (p *Pool[R]) Close() error {
	p.lifecycle.Close()
	return nil
}

// Terminate stops the pool immediately: queued and in-flight work is
// abandoned (spec.md §5, mirroring Pool.terminate()). It is idempotent, safe
// to call even after Close, and safe for concurrent callers.
func (p *Pool[R]) Terminate() error {
	p.lifecycle.Terminate()
	return nil
}

// Join blocks until all worker, dispatcher, demultiplexer, and supervisor
// goroutines have exited. Close or Terminate must be called first (spec.md
// §5, mirroring Pool.join(), which requires a prior close()/terminate()).
func (p *Pool[R]) Join() error {
	if p.state.Load() == stateRunning {
		return fmt.Errorf("%w: Join called before Close or Terminate", ErrInvalidState)
	}
	p.workersWG.Wait()
	// All workers have exited (after a Close, only once input was fully
	// drained and closed beneath them; after a Terminate, ctx was already
	// canceled). Either way it's now safe to stop the coordination
	// goroutines too.
	p.cancel()
	p.internalWG.Wait()
	return nil
}

// Scoped runs fn with a freshly constructed Pool and guarantees Terminate+Join
// before returning, mirroring the "with Pool(...) as pool:" idiom from
// original_source/Lib/multiprocessing/pool.py's context-manager support,
// whose __exit__ calls terminate() rather than close() (spec.md §12,
// supplemented feature: scoped use). Queued or in-flight work that fn didn't
// already wait for is abandoned on exit, exactly as a bare "with Pool() as
// pool:" block does; call Close and Join directly from within fn first if a
// graceful drain is wanted instead.
func Scoped[R any](ctx context.Context, cfg *Config, fn func(*Pool[R]) error) error {
	p, err := New[R](ctx, cfg)
	if err != nil {
		return err
	}
	fnErr := fn(p)
	_ = p.Terminate()
	_ = p.Join()
	return fnErr
}
