package taskpool

import "context"

// dispatcher pulls submissions off the submission queue and feeds the
// task-sequence of each into the shared input channel, one taskItem at a
// time, until the sequence is exhausted — then records the submission's
// final length on its handle (spec.md §4.1, "_handle_tasks").
//
// Submissions are drained one at a time rather than interleaved, matching
// the single-threaded task-feeder in the original implementation
// (original_source/Lib/multiprocessing/pool.py: _handle_tasks iterates one
// taskseq to exhaustion before moving to the next item on the queue).
type dispatcher[R any] struct {
	submissions <-chan submission[R]
	input       chan<- taskItem[R]
}

func newDispatcher[R any](submissions <-chan submission[R], input chan<- taskItem[R]) *dispatcher[R] {
	return &dispatcher[R]{submissions: submissions, input: input}
}

// run feeds submissions into input until ctx is canceled or submissions is
// closed (the pool's shutdown signal for the dispatcher).
func (d *dispatcher[R]) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sub, ok := <-d.submissions:
			if !ok {
				return
			}
			if !d.feed(ctx, sub) {
				return
			}
		}
	}
}

// feed drains one submission's task-sequence into input. It returns false if
// ctx was canceled mid-feed, signaling run to stop entirely. elemCount tracks
// total elements (not task items: a chunk item covers several elements) so
// setLength receives an element count comparable to what MapResult/iterators
// accumulate in deliverChunk.
func (d *dispatcher[R]) feed(ctx context.Context, sub submission[R]) bool {
	elemCount := 0
	for {
		item, ok, genErr := sub.next()
		if genErr != nil {
			// Guarded generation (spec.md §4.1): the generator itself failed
			// mid-iteration. Synthesize one terminal failing task so the
			// handle fails instead of hanging forever waiting for an
			// element that will never arrive. The synthetic task counts as
			// one more element, so the length passed to setLength covers it
			// and a streaming handle yields its error as the last element.
			item = taskItem[R]{
				index: elemCount,
				kind:  kindSingle,
				runSingle: func(context.Context) (R, error) {
					var zero R
					return zero, genErr
				},
			}
			item.jobID = sub.jobID
			select {
			case d.input <- item:
				elemCount++
			case <-ctx.Done():
				return false
			}
			break
		}
		if !ok {
			break
		}
		item.jobID = sub.jobID
		select {
		case d.input <- item:
			if item.kind == kindChunk {
				elemCount += item.chunkLen
			} else {
				elemCount++
			}
		case <-ctx.Done():
			return false
		}
	}
	if sub.setLength != nil {
		sub.setLength(elemCount)
	}
	return true
}
