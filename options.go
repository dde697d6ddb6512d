package taskpool

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/corwin-dev/taskpool/metrics"
)

// Option configures a Pool. Use NewOptions(ctx, opts...) to construct a Pool via options.
type Option func(*Config)

// WithProcesses sets the number of worker goroutines (must be > 0).
func WithProcesses(n uint) Option {
	return func(c *Config) {
		if n == 0 {
			panic("taskpool: WithProcesses requires n > 0")
		}
		c.Processes = n
	}
}

// WithMaxTasksPerChild caps how many tasks a worker executes before voluntary exit.
func WithMaxTasksPerChild(n uint) Option {
	return func(c *Config) { c.MaxTasksPerChild = n }
}

// WithInitializer runs fn once per worker before that worker's first task.
func WithInitializer(fn func(ctx context.Context) error) Option {
	return func(c *Config) { c.Initializer = fn }
}

// WithExecutorFactory overrides the worker-spawning primitive (default: goroutine executor).
func WithExecutorFactory(factory func() Executor) Option {
	return func(c *Config) { c.ExecutorFactory = factory }
}

// WithSubmissionBuffer sets the size of the channel carrying job submissions to the dispatcher.
func WithSubmissionBuffer(size uint) Option {
	return func(c *Config) { c.SubmissionBufferSize = size }
}

// WithInputBuffer sets the size of the channel carrying tasks to workers.
func WithInputBuffer(size uint) Option {
	return func(c *Config) { c.InputBufferSize = size }
}

// WithOutputBuffer sets the size of the channel carrying result envelopes from workers.
func WithOutputBuffer(size uint) Option {
	return func(c *Config) { c.OutputBufferSize = size }
}

// WithSupervisorInterval sets the cadence of the worker-reaping/respawning loop.
func WithSupervisorInterval(d time.Duration) Option {
	return func(c *Config) { c.SupervisorInterval = d }
}

// WithErrorTagging wraps task errors with job-id/index correlation metadata.
func WithErrorTagging() Option {
	return func(c *Config) { c.ErrorTagging = true }
}

// WithLogger attaches a structured logger for supervisor and worker lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics attaches a metrics.Provider for task throughput and worker liveness instruments.
func WithMetrics(p metrics.Provider) Option {
	return func(c *Config) { c.Metrics = p }
}

// NewOptions creates a new Pool using functional options.
// It builds a Config starting from defaultConfig and delegates to New.
func NewOptions[R any](ctx context.Context, opts ...Option) (*Pool[R], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			panic("taskpool: nil Option")
		}
		opt(&cfg)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("taskpool: invalid pool config: %w", err)
	}

	return New[R](ctx, &cfg)
}
