package taskpool

import (
	"context"

	"github.com/rs/zerolog"
)

// demultiplexer is the single reader of the output channel. For each
// workerOutcome it looks up the owning handle in the cache and delivers the
// outcome to it (spec.md §4.3, "_handle_results": "look up job-id in cache,
// deliver to the right handle"). A job-id with no cache entry is logged and
// dropped rather than panicking — it indicates either a already-removed
// (GC'd) handle or a programming error upstream, neither of which should take
// the whole pool down.
type demultiplexer[R any] struct {
	output <-chan workerOutcome[R]
	cache  *handleCache[R]
	logger zerolog.Logger
}

func newDemultiplexer[R any](output <-chan workerOutcome[R], cache *handleCache[R], logger zerolog.Logger) *demultiplexer[R] {
	return &demultiplexer[R]{output: output, cache: cache, logger: logger}
}

func (d *demultiplexer[R]) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drainAndCheck()
			return
		case res, ok := <-d.output:
			if !ok {
				d.drainAndCheck()
				return
			}
			d.dispatch(res)
		}
	}
}

// drainAndCheck delivers whatever outcomes are already buffered in output
// (a graceful Close's cancel can race the demultiplexer's own select, so
// without this a handle that already has a result sitting in the channel
// could otherwise be abandoned) and then asserts the cache-empty invariant
// (spec.md §5 step 3, mirroring pool.py's results-handler thread asserting
// self._cache is empty on exit): logged, not panicked, since a Terminate can
// legitimately abandon in-flight jobs whose handles never got a result.
func (d *demultiplexer[R]) drainAndCheck() {
	for {
		select {
		case res, ok := <-d.output:
			if !ok {
				return
			}
			d.dispatch(res)
		default:
			if !d.cache.empty() {
				d.logger.Warn().Msg("taskpool: result demultiplexer exiting with non-empty job cache")
			}
			return
		}
	}
}

func (d *demultiplexer[R]) dispatch(res workerOutcome[R]) {
	h, ok := d.cache.get(res.jobID)
	if !ok {
		d.logger.Warn().
			Uint64("job_id", uint64(res.jobID)).
			Int("index", res.index).
			Msg("taskpool: result for unknown job-id, dropping")
		return
	}

	if res.kind == kindChunk {
		h.deliverChunk(res.chunkBase, res.chunkLen, res.values, res.err)
	} else {
		h.deliverSingle(res.index, res.value, res.err)
	}
}
