package densemap

import "github.com/cockroachdb/errors"

// InlineStorage is the constraint on a SmallMap's inline bucket array: S is
// an array of buckets and *S exposes it as a slice. The array length is the
// inline bucket count and must be a power of two.
type InlineStorage[K, V, S any] interface {
	*S
	Buckets() []Pair[K, V]
}

type (
	Inline4[K, V any]  [4]Pair[K, V]
	Inline8[K, V any]  [8]Pair[K, V]
	Inline16[K, V any] [16]Pair[K, V]
	Inline32[K, V any] [32]Pair[K, V]
)

func (a *Inline4[K, V]) Buckets() []Pair[K, V]  { return a[:] }
func (a *Inline8[K, V]) Buckets() []Pair[K, V]  { return a[:] }
func (a *Inline16[K, V]) Buckets() []Pair[K, V] { return a[:] }
func (a *Inline32[K, V]) Buckets() []Pair[K, V] { return a[:] }

// SmallMap is a probed hash table whose first buckets live inside the
// SmallMap value. It behaves exactly like Map; it only moves to a heap bucket
// array once growth asks for more buckets than S holds.
//
// While small, the bucket slice points into the SmallMap itself, so a
// SmallMap must not be copied after Init. Use Swap to exchange two of them.
type SmallMap[K, V, S any, PS InlineStorage[K, V, S]] struct {
	base[K, V]
	small  bool
	inline S
}

// NewSmall returns a SmallMap ready to hold reserve entries without growing.
func NewSmall[K, V, S any, PS InlineStorage[K, V, S]](info KeyInfo[K], reserve int) *SmallMap[K, V, S, PS] {
	m := &SmallMap[K, V, S, PS]{}
	m.Init(info, reserve)
	return m
}

func (m *SmallMap[K, V, S, PS]) inlineBuckets() []Pair[K, V] {
	return PS(&m.inline).Buckets()
}

// InlineBuckets returns the number of buckets held inline.
func (m *SmallMap[K, V, S, PS]) InlineBuckets() int {
	return len(m.inlineBuckets())
}

// Small reports whether the entries currently live in the inline buckets.
func (m *SmallMap[K, V, S, PS]) Small() bool {
	return m.small
}

// Init (re)initialises m with info and room for reserve entries. The inline
// buckets are used unless reserve needs more of them.
func (m *SmallMap[K, V, S, PS]) Init(info KeyInfo[K], reserve int) {
	checkInfo(info)
	inline := m.inlineBuckets()
	if n := len(inline); n == 0 || n&(n-1) != 0 {
		panic(errors.AssertionFailedf("densemap: inline bucket count %d is not a power of two", n))
	}
	m.info = info
	m.epoch++
	if want := minBucketsForEntries(reserve); want > len(inline) {
		m.small = false
		m.clearInline()
		m.allocate(want)
		return
	}
	m.small = true
	m.buckets = inline
	m.initEmpty()
}

func (m *SmallMap[K, V, S, PS]) clearInline() {
	var zero S
	m.inline = zero
}

func (m *SmallMap[K, V, S, PS]) grow(atLeast int) {
	inline := m.inlineBuckets()
	if atLeast > len(inline) {
		atLeast = growTarget(atLeast)
	}

	if m.small {
		// The entries move out of the inline array before it is reused
		// or dropped.
		tmp := m.inline
		old := PS(&tmp).Buckets()
		if atLeast > len(inline) {
			m.allocate(atLeast)
			m.small = false
			m.clearInline()
		} else {
			m.buckets = inline
			m.initEmpty()
		}
		m.moveFromOldBuckets(old)
		return
	}

	old := m.buckets
	if atLeast <= len(inline) {
		m.small = true
		m.buckets = inline
		m.initEmpty()
	} else {
		m.allocate(atLeast)
	}
	m.moveFromOldBuckets(old)
}

// TryEmplace inserts k with value v unless k is present. It returns the
// position of k and whether the insertion happened.
func (m *SmallMap[K, V, S, PS]) TryEmplace(k K, v V) (Iterator[K, V], bool) {
	return m.insert(m, keyLookup[K]{key: k, info: m.info}, MakePair(k, v))
}

// InsertAs inserts p unless a key matching l is present.
func (m *SmallMap[K, V, S, PS]) InsertAs(p Pair[K, V], l Lookup[K]) (Iterator[K, V], bool) {
	return m.insert(m, l, p)
}

// Resize grows the bucket array to at least n buckets. It never shrinks.
func (m *SmallMap[K, V, S, PS]) Resize(n int) {
	m.epoch++
	if n > len(m.buckets) {
		m.grow(n)
	}
}

// Reserve makes room for n more entries before the next growth.
func (m *SmallMap[K, V, S, PS]) Reserve(n int) {
	m.epoch++
	if want := m.reserveTarget(n); want > len(m.buckets) {
		m.grow(want)
	}
}

// Swap exchanges the contents of m and other. Heap bucket arrays change
// hands; inline ones are copied, which costs at most the inline count.
func (m *SmallMap[K, V, S, PS]) Swap(other *SmallMap[K, V, S, PS]) {
	m.swapState(&other.base)
	m.small, other.small = other.small, m.small
	m.inline, other.inline = other.inline, m.inline
	if m.small {
		m.buckets = m.inlineBuckets()
	}
	if other.small {
		other.buckets = other.inlineBuckets()
	}
}
