package runner

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRun_ReturnsMainResult(t *testing.T) {
	err := Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
		return nil
	})
	require.NoError(t, err)
}

func TestRun_PropagatesMainError(t *testing.T) {
	wantErr := errors.New("main failed")
	err := Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestRun_CancelsBackgroundTasksOnFinalization(t *testing.T) {
	var canceled atomic.Bool

	err := Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
		reg.Go(func(ctx context.Context) error {
			<-ctx.Done()
			canceled.Store(true)
			return ctx.Err()
		})
		return nil
	})
	require.NoError(t, err)
	require.True(t, canceled.Load())
}

func TestRun_WaitsForBackgroundTasksBeforeReturning(t *testing.T) {
	var finished atomic.Bool

	err := Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
		reg.Go(func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		})
		return nil
	})
	require.NoError(t, err)
	require.True(t, finished.Load())
}

func TestRun_LogsEveryBackgroundTaskError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	err := Run(context.Background(), Options{Logger: logger}, func(ctx context.Context, reg *Registry) error {
		reg.Go(func(ctx context.Context) error { return errors.New("first background error") })
		reg.Go(func(ctx context.Context) error { return errors.New("second background error") })
		return nil
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "first background error")
	require.Contains(t, buf.String(), "second background error")
}

func TestRun_BackgroundTaskErrorDoesNotCancelMain(t *testing.T) {
	var mainCompleted atomic.Bool

	err := Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
		reg.Go(func(ctx context.Context) error { return errors.New("background failure") })

		// main keeps running on its own context after the background task
		// above has already failed; it must not observe cancellation caused
		// by that failure.
		time.Sleep(10 * time.Millisecond)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		mainCompleted.Store(true)
		return nil
	})
	require.NoError(t, err)
	require.True(t, mainCompleted.Load())
}

func TestRun_PanicsWhenNestedInsideAnotherRun(t *testing.T) {
	require.Panics(t, func() {
		_ = Run(context.Background(), Options{}, func(ctx context.Context, reg *Registry) error {
			return Run(ctx, Options{}, func(ctx context.Context, reg *Registry) error {
				return nil
			})
		})
	})
}
