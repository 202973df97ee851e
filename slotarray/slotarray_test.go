package slotarray_test

import (
	"sync"
	"testing"

	"github.com/arclight/tlrouter/slotarray"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	a := slotarray.NewArray[int](4)
	a.Insert(0, 10)
	a.Insert(3, 40)
	assert.Equal(t, 10, *a.Get(0))
	assert.Equal(t, 40, *a.Get(3))
	assert.Equal(t, 0, *a.Get(1))
}

func TestConcurrentWritesToDistinctIndices(t *testing.T) {
	const n = 1000
	a := slotarray.NewArray[int](n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Insert(i, i*2)
		}()
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.Equal(t, i*2, *a.Get(i))
	}
}

func TestForEachChunkCoversEveryIndexExactlyOnce(t *testing.T) {
	const n = 97 // deliberately not divisible by a typical worker count
	seen := slotarray.NewArray[int](n)
	slotarray.ForEachChunk(n, 8, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			seen.Insert(i, seen.AsSlice()[i]+1)
		}
	})
	for i := 0; i < n; i++ {
		assert.Equal(t, 1, *seen.Get(i))
	}
}

func TestFillParallel(t *testing.T) {
	a := slotarray.NewArray[float64](500)
	a.FillParallel(3.5, 4)
	for _, v := range a.AsSlice() {
		require.Equal(t, 3.5, v)
	}
}
