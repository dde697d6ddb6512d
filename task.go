package taskpool

import "context"

// Args is an opaque positional-argument tuple, used by Starmap-style dispatch
// where each input element is itself a set of arguments unpacked into the
// mapped function (spec.md §9, "Dynamic dispatch to user callables": the task
// payload is modeled as an opaque envelope rather than a fixed signature).
type Args []any

type taskKind uint8

const (
	kindSingle taskKind = iota
	kindChunk
)

// taskItem is one unit dispatched to a worker: either a single element
// (kindSingle) or a contiguous chunk of elements (kindChunk), matching the
// "Task: (job-id, index, function, positional args, keyword args)" wire
// format from spec.md §6, generalized so a chunk task carries a mapper over
// a slice instead of a single positional-args tuple.
type taskItem[R any] struct {
	jobID jobID
	index int // element index (kindSingle) or chunk index (kindChunk)

	kind      taskKind
	chunkBase int // first element index covered by this chunk
	chunkLen  int // number of elements covered by this chunk

	runSingle func(ctx context.Context) (R, error)
	runChunk  func(ctx context.Context) ([]R, error)
}

// workerOutcome is the result envelope a worker emits after executing a
// taskItem (spec.md §3, "Result envelope").
type workerOutcome[R any] struct {
	jobID jobID
	index int

	kind      taskKind
	chunkBase int
	chunkLen  int

	success bool
	value   R   // valid when kind == kindSingle
	values  []R // valid when kind == kindChunk && success
	err     error
}

// taskGenerator lazily yields task items for one submission, mirroring
// spec.md §4.1's "task-sequence" that "lazily yields (job-id, item-index,
// function, positional-args, keyword-args) tuples". Returning ok == false
// signals natural exhaustion; a non-nil genErr signals the "guarded
// generation" case (§4.1): the caller must still synthesize one terminal
// task so the job fails instead of hanging.
type taskGenerator[R any] func() (item taskItem[R], ok bool, genErr error)

// submission is what a caller places on the submission queue: a lazy task
// sequence plus an optional length-setter invoked once the sequence is
// exhausted (spec.md §4.1, "Task enqueue format").
type submission[R any] struct {
	jobID     jobID
	next      taskGenerator[R]
	setLength func(n int)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// computeChunksize implements spec.md §4.1's chunking policy: ceil(len /
// (4 * workers)), clamped to at least 1 for non-empty input and 0 for empty.
func computeChunksize(n, workers int) int {
	if n == 0 {
		return 0
	}
	if workers < 1 {
		workers = 1
	}
	c := ceilDiv(n, 4*workers)
	if c < 1 {
		c = 1
	}
	return c
}

// singleTaskGenerator yields exactly one kindSingle item then stops; used by
// Apply/ApplyAsync, which never chunk.
func singleTaskGenerator[R any](run func(context.Context) (R, error)) taskGenerator[R] {
	done := false
	return func() (taskItem[R], bool, error) {
		if done {
			return taskItem[R]{}, false, nil
		}
		done = true
		return taskItem[R]{index: 0, kind: kindSingle, runSingle: run}, true, nil
	}
}

// chunkGenerator yields kindChunk items over an already-materialized slice
// of elements, applying mapper to each contiguous chunk of size chunksize.
// Go's Map/Starmap/Imap/ImapUnordered all take materialized slices, so the
// "an iterable without a known length must be materialized first" clause of
// spec.md §4.1 is satisfied by the API surface itself.
func chunkGenerator[T, R any](items []T, chunksize int, mapper func(context.Context, []T) ([]R, error)) taskGenerator[R] {
	n := len(items)
	idx := 0
	return func() (taskItem[R], bool, error) {
		base := idx * chunksize
		if base >= n {
			return taskItem[R]{}, false, nil
		}
		end := base + chunksize
		if end > n {
			end = n
		}
		chunk := items[base:end]
		item := taskItem[R]{
			index:     idx,
			kind:      kindChunk,
			chunkBase: base,
			chunkLen:  end - base,
			runChunk:  func(ctx context.Context) ([]R, error) { return mapper(ctx, chunk) },
		}
		idx++
		return item, true, nil
	}
}

// elementMapper turns a per-element function into the []T -> []R mapper a
// chunk task runs, short-circuiting on the first element error exactly like
// Python's chunked worker helper (original_source/Lib/multiprocessing/pool.py
// mapstar/starmapstar): one failing element fails the whole chunk.
func elementMapper[T, R any](fn func(context.Context, T) (R, error)) func(context.Context, []T) ([]R, error) {
	return func(ctx context.Context, chunk []T) ([]R, error) {
		out := make([]R, len(chunk))
		for i, item := range chunk {
			r, err := fn(ctx, item)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
}
