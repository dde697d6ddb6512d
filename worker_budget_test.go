package taskpool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corwin-dev/taskpool/metrics"
)

func TestMaxTasksPerChild_WorkerRespawnsAfterBudget(t *testing.T) {
	ctx := context.Background()
	prov := metrics.NewBasicProvider()
	p, err := NewOptions[int](ctx,
		WithProcesses(1),
		WithMaxTasksPerChild(2),
		WithSupervisorInterval(5*time.Millisecond),
		WithMetrics(prov),
	)
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	for i := 0; i < 10; i++ {
		v, err := p.Apply(ctx, func(ctx context.Context) (int, error) { return 1, nil })
		require.NoError(t, err)
		require.Equal(t, 1, v)
	}

	// Ten tasks on one worker with a budget of two need five workers in turn.
	restarts := prov.Counter(metrics.WorkerRestartsTotal).(*metrics.BasicCounter).Snapshot()
	require.GreaterOrEqual(t, restarts, int64(4))
}

func TestUnlimitedMaxTasksPerChild_NeverRespawns(t *testing.T) {
	ctx := context.Background()
	prov := metrics.NewBasicProvider()
	p, err := NewOptions[int](ctx, WithProcesses(2), WithMaxTasksPerChild(0), WithMetrics(prov))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	for i := 0; i < 50; i++ {
		_, err := p.Apply(ctx, func(ctx context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	restarts := prov.Counter(metrics.WorkerRestartsTotal).(*metrics.BasicCounter).Snapshot()
	require.Zero(t, restarts)
}
