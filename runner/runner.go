package runner

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

type runningKey struct{}

// Registry tracks background tasks spawned during one Run call so Run can
// cancel and await all of them during finalization, collecting every error
// left behind rather than just the first (original_source/Lib/asyncio/
// runners.py: _cancel_all_tasks, which inspects every remaining task's
// exception, not just one).
type Registry struct {
	ctx context.Context

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// Go spawns fn as a background task tracked by the enclosing Run call. fn
// should observe ctx.Done() and return promptly once it fires. fn's context
// is canceled once main returns (or when main's own context is canceled); it
// is a cancel scope separate from main's, so one background task's error can
// never reach back and cancel main's still-running computation.
func (r *Registry) Go(fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(r.ctx); err != nil {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		}
	}()
}

// Options configures Run.
type Options struct {
	Debug  bool
	Logger zerolog.Logger
}

// Run drives main to completion on the calling goroutine, then cancels and
// awaits every task spawned through the Registry handed to main, logging
// each one that ended with an error other than context.Canceled
// (original_source/Lib/asyncio/runners.py: run(), _cancel_all_tasks).
//
// Run panics if called with a context already inside another Run call,
// mirroring asyncio.run()'s refusal to nest inside a running event loop.
func Run(ctx context.Context, opts Options, main func(ctx context.Context, reg *Registry) error) error {
	if ctx.Value(runningKey{}) != nil {
		panic("runner: Run called while already running")
	}

	rootCtx, cancel := context.WithCancel(context.WithValue(ctx, runningKey{}, true))
	defer cancel()

	// Background tasks get their own cancel scope, derived from rootCtx but
	// not shared with main: a background task returning an error must never
	// cancel main's still-running computation, only rootCtx's own
	// cancellation (or Run's finalization below) may do that.
	bgCtx, bgCancel := context.WithCancel(rootCtx)
	defer bgCancel()
	reg := &Registry{ctx: bgCtx}

	if opts.Debug {
		opts.Logger.Debug().Msg("runner: starting")
	}

	mainErr := main(rootCtx, reg)

	// Finalization: cancel so every background task still running notices,
	// then wait for all of them, logging every leftover error (spec.md
	// §4.10 step 4: "for each task that did not end cancelled and has an
	// error, deliver that error").
	bgCancel()
	reg.wg.Wait()
	for _, err := range reg.errs {
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		opts.Logger.Error().
			Err(err).
			Str("message", "shutdown-unhandled").
			Msg("runner: background task left an unhandled error")
	}

	if opts.Debug {
		opts.Logger.Debug().Msg("runner: finished")
	}

	return mainErr
}
