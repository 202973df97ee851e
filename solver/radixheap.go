package solver

import "math/bits"

// radixHeap is a monotone priority queue over uint32 keys that always pops
// the maximum remaining key first, under the constraint that every key
// pushed after a pop must be <= the key that was just popped. Buckets are
// indexed by the position of the highest bit at which a candidate key
// differs from the last popped key (0 meaning "equal to last"), giving
// O(1) amortized push and pop on keys that arrive in a roughly monotone
// stream — exactly the Solver's access pattern, since spec.md's push key
// (MAX_TIME - floor(cost*3600)) only decreases as Dijkstra's accumulated
// cost increases.
//
// This is the Go rendition of the original engine's RadixHeapMap<u32,
// Index> (SPEC_FULL.md §4.5); a key pushed strictly above the last popped
// key is the "monotonicity violation" the Solver's backup heap exists to
// absorb — radixHeap itself does not detect or reject such a push, it
// simply assumes the caller upholds the invariant (the Solver is the
// caller, and it checks before pushing).
type radixHeap struct {
	last    uint32
	buckets [33][]radixEntry
	size    int
}

type radixEntry struct {
	key   uint32
	value uint32
}

// newRadixHeap returns an empty heap whose monotonicity bound starts at
// math.MaxUint32, so the first push is always accepted regardless of key.
func newRadixHeap() *radixHeap {
	return &radixHeap{last: ^uint32(0)}
}

func bucketIndex(a, b uint32) int {
	if a == b {
		return 0
	}
	return 32 - bits.LeadingZeros32(a^b)
}

// Push inserts (key, value). Caller must ensure key <= the last popped key
// (or, before any pop, key <= math.MaxUint32, always true).
func (h *radixHeap) Push(key, value uint32) {
	idx := bucketIndex(h.last, key)
	h.buckets[idx] = append(h.buckets[idx], radixEntry{key: key, value: value})
	h.size++
}

// Len returns the number of entries currently held.
func (h *radixHeap) Len() int {
	return h.size
}

// IsEmpty reports whether the heap holds no entries.
func (h *radixHeap) IsEmpty() bool {
	return h.size == 0
}

// Pop removes and returns the entry with the largest key. ok is false if
// the heap is empty.
func (h *radixHeap) Pop() (key, value uint32, ok bool) {
	if h.size == 0 {
		return 0, 0, false
	}

	if len(h.buckets[0]) == 0 {
		h.redistributeLowestNonEmptyBucket()
	}

	b := h.buckets[0]
	last := len(b) - 1
	e := b[last]
	h.buckets[0] = b[:last]
	h.size--
	return e.key, e.value, true
}

// redistributeLowestNonEmptyBucket finds the smallest-index non-empty
// bucket (guaranteed to exist since size > 0 and bucket 0 is empty),
// advances h.last to the maximum key within it, and reinserts every entry
// from that bucket into the bucket its (new) distance from h.last implies.
// This always leaves bucket 0 non-empty afterward, since the entry holding
// the new maximum key is, by construction, at distance 0 from itself.
func (h *radixHeap) redistributeLowestNonEmptyBucket() {
	i := 1
	for h.buckets[i] == nil || len(h.buckets[i]) == 0 {
		i++
	}

	entries := h.buckets[i]
	h.buckets[i] = nil

	max := entries[0].key
	for _, e := range entries[1:] {
		if e.key > max {
			max = e.key
		}
	}
	h.last = max

	for _, e := range entries {
		idx := bucketIndex(h.last, e.key)
		h.buckets[idx] = append(h.buckets[idx], e)
	}
}

// Each calls fn once per held entry, in unspecified order; used by merge to
// drain both the primary and backup heaps into a fresh radixHeap.
func (h *radixHeap) Each(fn func(key, value uint32)) {
	for _, bucket := range h.buckets {
		for _, e := range bucket {
			fn(e.key, e.value)
		}
	}
}
