package slotarray

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ForEachChunk partitions [0, n) into workers contiguous, disjoint ranges
// and calls fn(lo, hi) for each range concurrently, waiting for all workers
// before returning. This is the Go stand-in for rayon's par_iter /
// by_uniform_blocks: every phase that mutates an Array across indices is
// expected to drive its fan-out through this helper (or an equivalent
// disjoint partition) so that concurrent writes never target the same
// index, satisfying the package's data-race contract.
//
// workers <= 0 defaults to runtime.GOMAXPROCS(0). A workers count larger
// than n is clamped to n; an empty range runs fn zero times.
func ForEachChunk(n, workers int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	g, _ := errgroup.WithContext(context.Background())
	chunk := (n + workers - 1) / workers
	for lo := 0; lo < n; lo += chunk {
		lo := lo
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait() // fn never returns an error; Wait only joins the barrier.
}

// FillParallel overwrites every slot with value, fanned out across workers
// disjoint index ranges.
func (a *Array[T]) FillParallel(value T, workers int) {
	ForEachChunk(len(a.data), workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			a.data[i] = value
		}
	})
}
