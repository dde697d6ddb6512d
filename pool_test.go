package taskpool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApply_ReturnsResult(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	got, err := p.Apply(ctx, func(ctx context.Context) (int, error) {
		return 21 * 2, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestApply_PropagatesTaskError(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(1))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	wantErr := errors.New("boom")
	_, err = p.Apply(ctx, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestApply_RecoversTaskPanic(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(1))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	_, err = p.Apply(ctx, func(ctx context.Context) (int, error) {
		panic("kaboom")
	})
	require.ErrorIs(t, err, ErrTaskPanicked)
}

func TestApplyAsync_CallbacksFire(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(1))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	okCh := make(chan int, 1)
	ar, err := p.ApplyAsync(func(ctx context.Context) (int, error) {
		return 7, nil
	}, func(v int) { okCh <- v }, nil)
	require.NoError(t, err)

	select {
	case v := <-okCh:
		require.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for success callback")
	}
	require.True(t, ar.Ready())
	require.True(t, ar.Successful())
}

func TestClose_RejectsNewSubmissionsButDrainsQueued(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(1))
	require.NoError(t, err)

	ar, err := p.ApplyAsync(func(ctx context.Context) (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 1, nil
	}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Join())

	v, err := ar.Get(nil)
	require.NoError(t, err)
	require.Equal(t, 1, v)

	_, err = p.Apply(ctx, func(ctx context.Context) (int, error) { return 0, nil })
	require.ErrorIs(t, err, ErrNotReady)
}

func TestTerminate_IsIdempotentWithClose(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)

	require.NoError(t, p.Terminate())
	require.NoError(t, p.Close())
	require.NoError(t, p.Join())
}

func TestJoin_WithoutCloseOrTerminateReturnsError(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(1))
	require.NoError(t, err)
	defer p.Terminate()

	err = p.Join()
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestScoped_ClosesAndJoinsAutomatically(t *testing.T) {
	ctx := context.Background()
	var got int
	err := Scoped[int](ctx, nil, func(p *Pool[int]) error {
		v, err := p.Apply(ctx, func(ctx context.Context) (int, error) { return 5, nil })
		got = v
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 5, got)
}

func TestInitializerFailure_RespawnsWorker(t *testing.T) {
	ctx := context.Background()
	var calls int32
	p, err := NewOptions[int](ctx,
		WithProcesses(1),
		WithSupervisorInterval(5*time.Millisecond),
		WithInitializer(func(ctx context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("init failed once")
			}
			return nil
		}),
	)
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	require.Eventually(t, func() bool {
		v, err := p.Apply(ctx, func(ctx context.Context) (int, error) { return 9, nil })
		return err == nil && v == 9
	}, 2*time.Second, 5*time.Millisecond)
}
