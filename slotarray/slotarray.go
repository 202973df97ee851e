// Package slotarray provides a fixed-capacity, index-addressed container
// that permits concurrent reads of all slots and concurrent writes to
// distinct slots, without a per-slot lock, plus ForEachChunk, the
// disjoint-range fan-out every parallel pass in this module runs through.
// The other packages keep their data in plain slices (and in network.Node's
// atomic fields), not in an Array.
//
// Contract (enforced by convention, not by the type system): writes to the
// same index must be externally serialized, or the caller must guarantee
// they never race — e.g. by partitioning a parallel loop into disjoint
// index ranges, or by a phase barrier that happens-before any reader. A
// write to the same index from two goroutines without such serialization is
// a data race; Array does not protect against it. This mirrors the
// discipline the original engine's SuperCell/ParallelList primitive relied
// on — see SPEC_FULL.md §4.1.
package slotarray

// Array is a fixed-size slice of T, addressed by index, with no internal
// locking. The zero value is not usable; construct with NewArray.
type Array[T any] struct {
	data []T
}

// NewArray allocates an array of n zero-valued slots.
func NewArray[T any](n int) *Array[T] {
	return &Array[T]{data: make([]T, n)}
}

// Len returns the number of slots.
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Insert writes value into slot i. The caller guarantees no concurrent
// access (read or write) to slot i while Insert runs.
func (a *Array[T]) Insert(i int, value T) {
	a.data[i] = value
}

// Get returns a pointer to slot i. Concurrent Get calls across distinct
// indices, or concurrent reads of the same index, are always safe; a Get
// racing a write to the same index is not, per the package-level contract.
func (a *Array[T]) Get(i int) *T {
	return &a.data[i]
}

// AsSlice exposes a view over every slot. Safe to read concurrently with
// reads; mutating through it is subject to the same disjoint-write contract
// as Insert/Get.
func (a *Array[T]) AsSlice() []T {
	return a.data
}

// Fill overwrites every slot with value, single-threaded; FillParallel is
// the fanned-out variant.
func (a *Array[T]) Fill(value T) {
	for i := range a.data {
		a.data[i] = value
	}
}
