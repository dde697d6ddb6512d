package taskpool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/corwin-dev/taskpool/metrics"
)

// Config holds Pool configuration.
//
// Zero value is not directly usable: construct one via defaultConfig and
// adjust fields, or prefer NewOptions with functional Options.
type Config struct {
	// Processes is the number of worker goroutines to run concurrently.
	// Zero (default) means the machine's logical CPU count, minimum 1.
	Processes uint

	// MaxTasksPerChild caps how many tasks a single worker executes before it
	// voluntarily exits and is replaced by the supervisor. Zero means unlimited.
	MaxTasksPerChild uint

	// Initializer runs exactly once per worker, before that worker's first task.
	// An error (or panic) here kills the worker immediately; the supervisor
	// notices the exit and respawns it.
	Initializer func(ctx context.Context) error

	// ExecutorFactory constructs the worker-spawning primitive. Defaults to an
	// in-process goroutine executor. Supplying an alternative lets the pool run
	// workers backed by any start/join/terminate/liveness primitive.
	ExecutorFactory func() Executor

	// SubmissionBufferSize sizes the channel carrying job submissions to the dispatcher.
	SubmissionBufferSize uint

	// InputBufferSize sizes the channel carrying individual tasks to workers.
	InputBufferSize uint

	// OutputBufferSize sizes the channel carrying result envelopes back from workers.
	OutputBufferSize uint

	// SupervisorInterval is the cadence at which the worker supervisor scans for
	// exited workers and respawns them.
	SupervisorInterval time.Duration

	// ErrorTagging wraps task errors with job-id/index correlation metadata
	// (see JobMetaError) before they reach a job handle.
	ErrorTagging bool

	// Logger receives structured events for worker respawns, panics, and
	// initializer failures. The zero value discards everything (zerolog.Nop()).
	Logger zerolog.Logger

	// Metrics receives counters/histograms for task throughput and worker
	// liveness. The zero value is a no-op provider.
	Metrics metrics.Provider
}

// ErrInvalidConfig is returned by validateConfig when a Config field violates an invariant.
var ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")

// validateConfig performs lightweight invariant checks on a fully defaulted Config.
func validateConfig(cfg *Config) error {
	if cfg.Processes == 0 {
		return fmt.Errorf("%w: Processes must be resolved to a positive value before validation", ErrInvalidConfig)
	}
	return nil
}
