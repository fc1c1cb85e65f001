package densemap

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// minBuckets is the smallest heap bucket array a table grows into.
const minBuckets = 64

// grower is implemented by each table type to replace its bucket array with
// one of at least atLeast buckets and rehash the live entries into it.
type grower interface {
	grow(atLeast int)
}

// base holds the probing, insertion and erasure logic shared by Map and
// SmallMap. The bucket array is always a power of two long (or empty) and
// always keeps at least one empty bucket, which is what ends every probe.
type base[K, V any] struct {
	info          KeyInfo[K]
	buckets       []Pair[K, V]
	numEntries    int
	numTombstones int
	epoch         uint64
}

// maxBuckets is the largest bucket count an int can express.
const maxBuckets = 1 << (bits.UintSize - 2)

func capacityOverflow(what string, n int) {
	panic(errors.AssertionFailedf("densemap: %s %d exceeds the largest table of %d buckets", what, n, maxBuckets))
}

// nextPowerOf2 returns the smallest power of two strictly greater than n.
// It panics when that power does not fit in an int.
func nextPowerOf2(n int) int {
	if n >= maxBuckets {
		capacityOverflow("bucket count", n)
	}
	return 1 << bits.Len(uint(n))
}

// minBucketsForEntries returns the bucket count that holds n entries without
// crossing the 3/4 load limit.
func minBucketsForEntries(n int) int {
	if n <= 0 {
		return 0
	}
	if n > math.MaxInt/4 {
		capacityOverflow("entry count", n)
	}
	return nextPowerOf2(n*4/3 + 1)
}

// growTarget rounds a requested bucket count the way a heap array is sized.
func growTarget(atLeast int) int {
	if atLeast <= 1 {
		return minBuckets
	}
	return max(minBuckets, nextPowerOf2(atLeast-1))
}

func (b *base[K, V]) checkInit() {
	if b.info == nil {
		panic(errors.AssertionFailedf("densemap: table used before Init"))
	}
}

// reserveTarget is the bucket count that holds n entries on top of the
// current ones.
func (b *base[K, V]) reserveTarget(n int) int {
	if n > math.MaxInt-b.numEntries {
		capacityOverflow("entry count", n)
	}
	return minBucketsForEntries(b.numEntries + n)
}

func (b *base[K, V]) initEmpty() {
	b.checkInit()
	b.numEntries = 0
	b.numTombstones = 0
	empty := b.info.EmptyKey()
	var zero V
	for i := range b.buckets {
		b.buckets[i].first = empty
		b.buckets[i].second = zero
	}
}

func (b *base[K, V]) allocate(n int) {
	b.buckets = make([]Pair[K, V], n)
	b.initEmpty()
}

// moveFromOldBuckets rehashes the live entries of old into the (already
// emptied) current bucket array.
func (b *base[K, V]) moveFromOldBuckets(old []Pair[K, V]) {
	b.numEntries = 0
	b.numTombstones = 0
	empty, tombstone := b.info.EmptyKey(), b.info.TombstoneKey()
	for i := range old {
		k := old[i].first
		if b.info.IsEqual(k, empty) || b.info.IsEqual(k, tombstone) {
			continue
		}
		idx, found := b.lookupBucketFor(keyLookup[K]{key: k, info: b.info})
		if found {
			panic(errors.AssertionFailedf("densemap: key already in the new bucket array"))
		}
		b.buckets[idx] = old[i]
		b.numEntries++
	}
}

// lookupBucketFor probes for l. When found it returns the bucket holding the
// matching key; otherwise the bucket an insertion should use: the first
// tombstone passed on the way, or the empty bucket that ended the probe.
// It returns -1 when there are no buckets at all.
func (b *base[K, V]) lookupBucketFor(l Lookup[K]) (int, bool) {
	n := len(b.buckets)
	if n == 0 {
		return -1, false
	}
	empty, tombstone := b.info.EmptyKey(), b.info.TombstoneKey()
	mask := uint64(n - 1)
	bucketNo := l.Hash() & mask
	foundTombstone := -1
	for probeAmt := uint64(1); ; probeAmt++ {
		k := b.buckets[bucketNo].first
		switch {
		case b.info.IsEqual(k, empty):
			if foundTombstone >= 0 {
				return foundTombstone, false
			}
			return int(bucketNo), false
		case b.info.IsEqual(k, tombstone):
			if foundTombstone < 0 {
				foundTombstone = int(bucketNo)
			}
		case l.Equal(k):
			return int(bucketNo), true
		}
		bucketNo = (bucketNo + probeAmt) & mask
	}
}

func (b *base[K, V]) iterAt(pos int) Iterator[K, V] {
	return Iterator[K, V]{
		buckets: b.buckets,
		pos:     pos,
		info:    b.info,
		epoch:   &b.epoch,
		stamp:   b.epoch,
	}
}

func (b *base[K, V]) checkInsertable(k K) {
	if b.info.IsEqual(k, b.info.EmptyKey()) || b.info.IsEqual(k, b.info.TombstoneKey()) {
		panic(errors.AssertionFailedf("densemap: empty or tombstone key inserted"))
	}
}

// insert stores p in the bucket chosen for l unless l is already present.
// It may grow the table through g first.
func (b *base[K, V]) insert(g grower, l Lookup[K], p Pair[K, V]) (Iterator[K, V], bool) {
	b.checkInit()
	b.checkInsertable(p.first)
	idx, found := b.lookupBucketFor(l)
	if found {
		return b.iterAt(idx), false
	}

	b.epoch++
	newNumEntries := b.numEntries + 1
	numBuckets := len(b.buckets)
	if newNumEntries*4 >= numBuckets*3 {
		g.grow(numBuckets * 2)
		idx, _ = b.lookupBucketFor(l)
	} else if numBuckets-(newNumEntries+b.numTombstones) <= numBuckets/8 {
		// Too many tombstones: rehash at the same size to reclaim them.
		g.grow(numBuckets)
		idx, _ = b.lookupBucketFor(l)
	}

	b.numEntries++
	if !b.info.IsEqual(b.buckets[idx].first, b.info.EmptyKey()) {
		b.numTombstones--
	}
	b.buckets[idx] = p
	return b.iterAt(idx), true
}

func (b *base[K, V]) eraseBucket(idx int) {
	var zero V
	b.buckets[idx].first = b.info.TombstoneKey()
	b.buckets[idx].second = zero
	b.numEntries--
	b.numTombstones++
}

// swapState exchanges everything but the epochs, then retires the
// iterators of both sides.
func (b *base[K, V]) swapState(other *base[K, V]) {
	be, oe := b.epoch, other.epoch
	*b, *other = *other, *b
	b.epoch, other.epoch = be+1, oe+1
}

// Empty reports whether the table holds no entries.
func (b *base[K, V]) Empty() bool {
	return b.numEntries == 0
}

// Size returns the number of entries.
func (b *base[K, V]) Size() int {
	return b.numEntries
}

// NumBuckets returns the length of the current bucket array.
func (b *base[K, V]) NumBuckets() int {
	return len(b.buckets)
}

// MemorySize returns the number of bytes taken by the bucket array.
func (b *base[K, V]) MemorySize() int {
	var p Pair[K, V]
	return len(b.buckets) * int(unsafe.Sizeof(p))
}

// Count returns 1 if k is present, 0 otherwise.
func (b *base[K, V]) Count(k K) int {
	if _, found := b.lookupBucketFor(keyLookup[K]{key: k, info: b.info}); found {
		return 1
	}
	return 0
}

// Find returns the position of k, or End.
func (b *base[K, V]) Find(k K) Iterator[K, V] {
	return b.FindAs(keyLookup[K]{key: k, info: b.info})
}

// FindAs returns the position of the key matching l, or End.
func (b *base[K, V]) FindAs(l Lookup[K]) Iterator[K, V] {
	if idx, found := b.lookupBucketFor(l); found {
		return b.iterAt(idx)
	}
	return b.End()
}

// Erase removes k and reports whether it was present.
func (b *base[K, V]) Erase(k K) bool {
	idx, found := b.lookupBucketFor(keyLookup[K]{key: k, info: b.info})
	if !found {
		return false
	}
	b.epoch++
	b.eraseBucket(idx)
	return true
}

// EraseAt removes the entry it rests on. it must come from this table and
// be current; it is retired by the call.
func (b *base[K, V]) EraseAt(it Iterator[K, V]) {
	if it.epoch != &b.epoch {
		panic(errors.AssertionFailedf("densemap: erasing an iterator of another table"))
	}
	it.checkEpoch()
	if it.AtEnd() {
		panic(errors.AssertionFailedf("densemap: erasing the end iterator"))
	}
	b.epoch++
	b.eraseBucket(it.pos)
}

// RemoveIf erases every entry for which pred returns true and reports
// whether any was erased.
func (b *base[K, V]) RemoveIf(pred func(p *Pair[K, V]) bool) bool {
	empty, tombstone := b.info.EmptyKey(), b.info.TombstoneKey()
	removed := false
	for i := range b.buckets {
		k := b.buckets[i].first
		if b.info.IsEqual(k, empty) || b.info.IsEqual(k, tombstone) {
			continue
		}
		if pred(&b.buckets[i]) {
			b.eraseBucket(i)
			removed = true
		}
	}
	if removed {
		b.epoch++
	}
	return removed
}

// Clear removes every entry and keeps the bucket array.
func (b *base[K, V]) Clear() {
	b.epoch++
	if b.numEntries == 0 && b.numTombstones == 0 {
		return
	}
	b.initEmpty()
}

// Begin returns the first live position, or End when the table is empty.
func (b *base[K, V]) Begin() Iterator[K, V] {
	if b.numEntries == 0 {
		return b.End()
	}
	it := b.iterAt(0)
	it.advancePastEmptyBuckets()
	return it
}

// End returns the position past the last bucket.
func (b *base[K, V]) End() Iterator[K, V] {
	return b.iterAt(len(b.buckets))
}
