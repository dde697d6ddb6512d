package taskpool

import "context"

// Map applies fn to every element of items across the pool's workers and
// blocks for the full ordered result slice (spec.md §4.2, mirroring
// Python's Pool.map). Elements are chunked per computeChunksize so a single
// call doesn't incur one round-trip per element.
func Map[T, R any](ctx context.Context, p *Pool[R], items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	mr, err := MapAsync(p, items, fn, nil, nil)
	if err != nil {
		return nil, err
	}
	return mr.Get(ctx.Done())
}

// MapAsync is the non-blocking counterpart of Map, mirroring Pool.map_async.
func MapAsync[T, R any](p *Pool[R], items []T, fn func(context.Context, T) (R, error), onSuccess func([]R), onError func(error)) (*MapResult[R], error) {
	mr := newMapResult[R](onSuccess, onError)
	chunksize := computeChunksize(len(items), int(p.cfg.Processes))
	gen := chunkGenerator(items, chunksize, elementMapper(fn))
	_, err := p.submit(mr, func(id jobID) submission[R] {
		return submission[R]{jobID: id, next: gen, setLength: mr.setLength}
	})
	if err != nil {
		return nil, err
	}
	return mr, nil
}

// Starmap is Map specialized to Args-tuple elements, the counterpart of
// Python's Pool.starmap: each Args element is passed whole to fn, which reads
// its positional arguments from it by index (spec.md §9).
func Starmap[R any](ctx context.Context, p *Pool[R], items []Args, fn func(context.Context, Args) (R, error)) ([]R, error) {
	return Map(ctx, p, items, fn)
}

// StarmapAsync is the non-blocking counterpart of Starmap.
func StarmapAsync[R any](p *Pool[R], items []Args, fn func(context.Context, Args) (R, error), onSuccess func([]R), onError func(error)) (*MapResult[R], error) {
	return MapAsync(p, items, fn, onSuccess, onError)
}

// Imap streams results in input order as they become available, mirroring
// Python's Pool.imap. Unlike Map, Imap always uses a chunksize of 1 so the first
// result can be consumed as soon as the first element finishes, at the cost
// of more per-element round-trips (spec.md §4.2).
func Imap[T, R any](p *Pool[R], items []T, fn func(context.Context, T) (R, error)) (*IMapIterator[R], error) {
	it := newIMapIterator[R]()
	gen := chunkGenerator(items, 1, elementMapper(fn))
	_, err := p.submit(it, func(id jobID) submission[R] {
		return submission[R]{jobID: id, next: gen, setLength: it.setLength}
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}

// ImapUnordered streams results in arrival order rather than input order,
// mirroring Python's Pool.imap_unordered.
func ImapUnordered[T, R any](p *Pool[R], items []T, fn func(context.Context, T) (R, error)) (*IMapUnorderedIterator[R], error) {
	it := newIMapUnorderedIterator[R]()
	gen := chunkGenerator(items, 1, elementMapper(fn))
	_, err := p.submit(it, func(id jobID) submission[R] {
		return submission[R]{jobID: id, next: gen, setLength: it.setLength}
	})
	if err != nil {
		return nil, err
	}
	return it, nil
}
