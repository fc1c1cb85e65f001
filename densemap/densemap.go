// Package densemap implements probed hash tables whose buckets hold keys and
// values inline: Map keeps its buckets on the heap, SmallMap keeps a fixed
// number of them inside the value itself until it outgrows them.
//
// Both use open addressing over a power-of-two bucket array with quadratic
// probing. Never-used and erased buckets are told apart from live ones by two
// reserved keys supplied by a KeyInfo, so a bucket carries nothing but its
// key and value.
package densemap

// Map is a heap-backed probed hash table. The zero Map is not usable; create
// one with New or Init.
type Map[K, V any] struct {
	base[K, V]
}

// New returns a Map ready to hold reserve entries without growing.
func New[K, V any](info KeyInfo[K], reserve int) *Map[K, V] {
	m := &Map[K, V]{}
	m.Init(info, reserve)
	return m
}

// Init (re)initialises m with info and room for reserve entries. Any previous
// contents are dropped.
func (m *Map[K, V]) Init(info KeyInfo[K], reserve int) {
	checkInfo(info)
	m.info = info
	m.buckets = nil
	m.numEntries = 0
	m.numTombstones = 0
	m.epoch++
	if n := minBucketsForEntries(reserve); n > 0 {
		m.allocate(n)
	}
}

func (m *Map[K, V]) grow(atLeast int) {
	old := m.buckets
	m.allocate(growTarget(atLeast))
	if old != nil {
		m.moveFromOldBuckets(old)
	}
}

// TryEmplace inserts k with value v unless k is present. It returns the
// position of k and whether the insertion happened.
func (m *Map[K, V]) TryEmplace(k K, v V) (Iterator[K, V], bool) {
	return m.insert(m, keyLookup[K]{key: k, info: m.info}, MakePair(k, v))
}

// InsertAs inserts p unless a key matching l is present. l decides presence;
// p is what gets stored.
func (m *Map[K, V]) InsertAs(p Pair[K, V], l Lookup[K]) (Iterator[K, V], bool) {
	return m.insert(m, l, p)
}

// Resize grows the bucket array to at least n buckets. It never shrinks.
func (m *Map[K, V]) Resize(n int) {
	m.epoch++
	if n > len(m.buckets) {
		m.grow(n)
	}
}

// Reserve makes room for n more entries before the next growth.
func (m *Map[K, V]) Reserve(n int) {
	m.epoch++
	if want := m.reserveTarget(n); want > len(m.buckets) {
		m.grow(want)
	}
}

// Swap exchanges the contents of m and other without touching any bucket.
func (m *Map[K, V]) Swap(other *Map[K, V]) {
	m.swapState(&other.base)
}
