package taskpool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(4))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	got, err := Map(ctx, p, items, func(ctx context.Context, n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 50)
	for i, v := range got {
		require.Equal(t, i*i, v)
	}
}

func TestMap_EmptyInput(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	got, err := Map(ctx, p, []int{}, func(ctx context.Context, n int) (int, error) { return n, nil })
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMap_OneElementErrorFailsWholeJob(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	wantErr := errors.New("element 3 is bad")
	items := []int{0, 1, 2, 3, 4, 5}
	_, err = Map(ctx, p, items, func(ctx context.Context, n int) (int, error) {
		if n == 3 {
			return 0, wantErr
		}
		return n, nil
	})
	require.ErrorIs(t, err, wantErr)
}

func TestStarmap_UnpacksArgs(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	items := []Args{{1, 2}, {3, 4}, {5, 6}}
	got, err := Starmap(ctx, p, items, func(ctx context.Context, a Args) (int, error) {
		return a[0].(int) + a[1].(int), nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{3, 7, 11}, got)
}

func TestMapAsync_CallbackFiresOnCompletion(t *testing.T) {
	ctx := context.Background()
	p, err := NewOptions[int](ctx, WithProcesses(2))
	require.NoError(t, err)
	defer p.Join()
	defer p.Close()

	done := make(chan []int, 1)
	mr, err := MapAsync(p, []int{1, 2, 3}, func(ctx context.Context, n int) (int, error) {
		return n + 1, nil
	}, func(v []int) { done <- v }, nil)
	require.NoError(t, err)

	got := <-done
	require.Equal(t, []int{2, 3, 4}, got)
	require.True(t, mr.Ready())
}
