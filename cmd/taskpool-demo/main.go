// Command taskpool-demo is additive tooling for exercising the taskpool
// library from a shell; it is not part of the library's programmatic
// surface.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/corwin-dev/taskpool"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workers uint
	var count int

	root := &cobra.Command{
		Use:   "taskpool-demo",
		Short: "Exercise the taskpool library from the command line",
	}

	mapCmd := &cobra.Command{
		Use:   "map",
		Short: "Square N integers across a pool and print the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd.Context(), workers, count)
		},
	}
	mapCmd.Flags().UintVar(&workers, "workers", 4, "number of pool workers")
	mapCmd.Flags().IntVar(&count, "count", 20, "number of elements to square")

	imapCmd := &cobra.Command{
		Use:   "imap",
		Short: "Stream squared results for N integers in input order as they become available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImap(cmd.Context(), workers, count)
		},
	}
	imapCmd.Flags().UintVar(&workers, "workers", 4, "number of pool workers")
	imapCmd.Flags().IntVar(&count, "count", 20, "number of elements to square")

	root.AddCommand(mapCmd, imapCmd)
	return root
}

func runMap(ctx context.Context, workers uint, count int) error {
	pool, err := taskpool.NewOptions[int](ctx, taskpool.WithProcesses(workers))
	if err != nil {
		return err
	}
	defer pool.Join()
	defer pool.Close()

	items := make([]int, count)
	for i := range items {
		items[i] = i
	}

	results, err := taskpool.Map(ctx, pool, items, square)
	if err != nil {
		return err
	}
	fmt.Println(results)
	return nil
}

func runImap(ctx context.Context, workers uint, count int) error {
	pool, err := taskpool.NewOptions[int](ctx, taskpool.WithProcesses(workers))
	if err != nil {
		return err
	}
	defer pool.Join()
	defer pool.Close()

	items := make([]int, count)
	for i := range items {
		items[i] = i
	}

	it, err := taskpool.Imap(pool, items, square)
	if err != nil {
		return err
	}
	for {
		v, err, ok := it.Next(ctx)
		if !ok {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(v)
	}
}

func square(ctx context.Context, n int) (int, error) {
	select {
	case <-time.After(time.Duration(rand.Intn(5)) * time.Millisecond):
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	return n * n, nil
}
