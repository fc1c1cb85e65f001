package densemap

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type smallIntMap = SmallMap[int, int, Inline4[int, int], *Inline4[int, int]]

func TestSmallMapStaysInline(t *testing.T) {
	m := NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, 0)
	assert.True(t, m.Small())
	assert.Equal(t, 4, m.InlineBuckets())
	assert.Equal(t, 4, m.NumBuckets())
	assert.Equal(t, 4*int(unsafe.Sizeof(Pair[int, int]{})), m.MemorySize())

	m.TryEmplace(1, 10)
	m.TryEmplace(2, 20)
	assert.True(t, m.Small())
	assert.Equal(t, 2, m.Size())
}

func TestSmallMapSpills(t *testing.T) {
	m := NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, 0)
	for i := 0; i < 3; i++ {
		m.TryEmplace(i, i*10)
	}
	assert.False(t, m.Small(), "third entry crosses the load limit of four buckets")
	assert.Equal(t, minBuckets, m.NumBuckets())

	for i := 3; i < 200; i++ {
		m.TryEmplace(i, i*10)
	}
	for i := 0; i < 200; i++ {
		it := m.Find(i)
		require.False(t, it.AtEnd(), "key %d lost", i)
		assert.Equal(t, i*10, *it.Bucket().GetSecond())
	}
}

func TestSmallMapReserveBeyondInline(t *testing.T) {
	m := NewSmall[int, int, Inline8[int, int]](IntegerInfo[int]{}, 100)
	assert.False(t, m.Small())
	assert.Equal(t, 256, m.NumBuckets())

	m = NewSmall[int, int, Inline8[int, int]](IntegerInfo[int]{}, 5)
	assert.True(t, m.Small())
	m.Reserve(6)
	assert.False(t, m.Small())
}

func TestSmallMapTombstoneChurn(t *testing.T) {
	m := NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, 0)
	m.TryEmplace(0, 0)
	for i := 1; i < 100; i++ {
		m.TryEmplace(i, i)
		require.True(t, m.Erase(i))
	}
	assert.Equal(t, 1, m.Size())
	assert.Equal(t, 1, m.Count(0))
	assert.True(t, m.Small(), "tombstones are reclaimed in place")
	assert.Equal(t, 4, m.NumBuckets())
}

func TestSmallMapSwap(t *testing.T) {
	var a, b smallIntMap
	a.Init(IntegerInfo[int]{}, 0)
	b.Init(IntegerInfo[int]{}, 0)
	a.TryEmplace(1, 1)
	for i := 10; i < 20; i++ {
		b.TryEmplace(i, i)
	}
	require.True(t, a.Small())
	require.False(t, b.Small())

	itA := a.Find(1)
	a.Swap(&b)

	assert.False(t, a.Small())
	assert.True(t, b.Small())
	assert.Equal(t, 10, a.Size())
	assert.Equal(t, 1, b.Size())
	assert.Equal(t, 1, b.Count(1))
	assert.Equal(t, 1, a.Count(15))
	assert.Panics(t, func() { itA.Bucket() })

	// Inserting into the small side must land in its own inline array.
	b.TryEmplace(2, 2)
	assert.Equal(t, 1, b.Count(2))
	assert.Equal(t, 0, a.Count(2))
}

func TestSmallMapSwapBothInline(t *testing.T) {
	var a, b smallIntMap
	a.Init(IntegerInfo[int]{}, 0)
	b.Init(IntegerInfo[int]{}, 0)
	a.TryEmplace(1, 1)
	b.TryEmplace(2, 2)

	a.Swap(&b)
	assert.Equal(t, 1, a.Count(2))
	assert.Equal(t, 0, a.Count(1))
	assert.Equal(t, 1, b.Count(1))

	a.Erase(2)
	assert.Equal(t, 1, b.Count(1))
	assert.True(t, a.Empty())
}

func TestSmallMapInlineMustBePowerOfTwo(t *testing.T) {
	var m SmallMap[int, int, inline3, *inline3]
	assert.Panics(t, func() { m.Init(IntegerInfo[int]{}, 0) })
}

type inline3 [3]Pair[int, int]

func (a *inline3) Buckets() []Pair[int, int] { return a[:] }
