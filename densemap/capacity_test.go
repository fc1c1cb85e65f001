package densemap

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertAssertionFailure checks that f panics with an assertion failure.
func assertAssertionFailure(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.HasAssertionFailure(err), "unexpected panic: %v", err)
	}()
	f()
}

// table is the part of Map and SmallMap the capacity tests drive.
type table interface {
	Size() int
	NumBuckets() int
	Count(k int) int
	TryEmplace(k, v int) (Iterator[int, int], bool)
	Resize(n int)
	Reserve(n int)
}

func capacityTables(entries int) map[string]table {
	m := New[int, int](IntegerInfo[int]{}, 0)
	spilled := NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, 0)
	inline := NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, 0)
	for i := 0; i < entries; i++ {
		m.TryEmplace(i, i)
		spilled.TryEmplace(i, i)
	}
	inline.TryEmplace(0, 0)
	return map[string]table{"Map": m, "SmallMap spilled": spilled, "SmallMap inline": inline}
}

func assertIntact(t *testing.T, tbl table, size, buckets int) {
	t.Helper()
	assert.Equal(t, size, tbl.Size())
	assert.Equal(t, buckets, tbl.NumBuckets())
	for i := 0; i < size; i++ {
		require.Equal(t, 1, tbl.Count(i), "key %d lost", i)
	}
}

func TestNextPowerOf2Overflow(t *testing.T) {
	assert.Equal(t, maxBuckets, nextPowerOf2(maxBuckets-1))
	assertAssertionFailure(t, func() { nextPowerOf2(maxBuckets) })
	assertAssertionFailure(t, func() { growTarget(maxBuckets + 1) })
	assertAssertionFailure(t, func() { growTarget(math.MaxInt) })
	assertAssertionFailure(t, func() { minBucketsForEntries(math.MaxInt / 2) })
	assert.Equal(t, maxBuckets, minBucketsForEntries(math.MaxInt/4))
}

func TestResizeBeyondLargestTable(t *testing.T) {
	for name, tbl := range capacityTables(100) {
		t.Run(name, func(t *testing.T) {
			size, buckets := tbl.Size(), tbl.NumBuckets()

			assertAssertionFailure(t, func() { tbl.Resize(maxBuckets + 1) })
			assertIntact(t, tbl, size, buckets)

			assertAssertionFailure(t, func() { tbl.Resize(math.MaxInt) })
			assertIntact(t, tbl, size, buckets)

			// Representable but impossible to allocate: the runtime's
			// makeslice panic reaches the caller.
			assert.Panics(t, func() { tbl.Resize(maxBuckets) })
			assertIntact(t, tbl, size, buckets)

			_, inserted := tbl.TryEmplace(size, size)
			assert.True(t, inserted)
		})
	}
}

func TestReserveBeyondLargestTable(t *testing.T) {
	for name, tbl := range capacityTables(100) {
		t.Run(name, func(t *testing.T) {
			size, buckets := tbl.Size(), tbl.NumBuckets()

			assertAssertionFailure(t, func() { tbl.Reserve(math.MaxInt / 2) })
			assertIntact(t, tbl, size, buckets)

			assertAssertionFailure(t, func() { tbl.Reserve(math.MaxInt) })
			assertIntact(t, tbl, size, buckets)

			tbl.Reserve(-5)
			assertIntact(t, tbl, size, buckets)
		})
	}

	assertAssertionFailure(t, func() { New[int, int](IntegerInfo[int]{}, math.MaxInt/2) })
	assertAssertionFailure(t, func() {
		NewSmall[int, int, Inline4[int, int]](IntegerInfo[int]{}, math.MaxInt/2)
	})
}

func TestRetiredIteratorEqualsNothingNewer(t *testing.T) {
	m := New[int, int](IntegerInfo[int]{}, 16)
	m.TryEmplace(1, 1)
	it := m.Find(1)
	assert.True(t, it.Equal(m.Find(1)))

	m.TryEmplace(2, 2)
	fresh := m.Find(1)
	assert.Equal(t, it.pos, fresh.pos, "no rehash moved the key")
	assert.False(t, it.Equal(fresh))
	assert.False(t, fresh.Equal(it))
	assert.True(t, fresh.Equal(m.Find(1)))
}

func TestZeroTablesRejectUse(t *testing.T) {
	var m Map[int, int]
	assert.NotPanics(t, func() { assert.True(t, m.Find(1).AtEnd()) })
	assert.False(t, m.Erase(1))
	assertAssertionFailure(t, func() { m.TryEmplace(1, 1) })
	assertAssertionFailure(t, func() { m.Reserve(10) })
	assertAssertionFailure(t, func() { m.Resize(10) })

	var s smallIntMap
	assertAssertionFailure(t, func() { s.TryEmplace(1, 1) })
	assertAssertionFailure(t, func() { s.Resize(2) })
	assertAssertionFailure(t, func() { s.Resize(100) })
}
