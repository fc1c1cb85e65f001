package densemap

import "github.com/cockroachdb/errors"

// Iterator is a position in a table's bucket array that only ever rests on a
// live bucket or at the end. It belongs to the table state it was taken from:
// any structural change to that table (an insertion that inserted, an erase,
// Clear, Resize, Reserve or Swap) retires it, and using a retired iterator
// panics.
type Iterator[K, V any] struct {
	buckets []Pair[K, V]
	pos     int
	info    KeyInfo[K]
	epoch   *uint64
	stamp   uint64
}

func (it *Iterator[K, V]) advancePastEmptyBuckets() {
	empty, tombstone := it.info.EmptyKey(), it.info.TombstoneKey()
	for it.pos < len(it.buckets) {
		k := it.buckets[it.pos].first
		if !it.info.IsEqual(k, empty) && !it.info.IsEqual(k, tombstone) {
			return
		}
		it.pos++
	}
}

func (it Iterator[K, V]) checkEpoch() {
	if it.epoch == nil {
		panic(errors.AssertionFailedf("densemap: use of a zero Iterator"))
	}
	if *it.epoch != it.stamp {
		panic(errors.AssertionFailedf("densemap: iterator used after its table was modified"))
	}
}

// Bucket returns the bucket the iterator rests on.
func (it Iterator[K, V]) Bucket() *Pair[K, V] {
	it.checkEpoch()
	if it.pos >= len(it.buckets) {
		panic(errors.AssertionFailedf("densemap: dereferencing the end iterator"))
	}
	return &it.buckets[it.pos]
}

// Next moves to the following live bucket, or to the end.
func (it *Iterator[K, V]) Next() {
	it.checkEpoch()
	if it.pos >= len(it.buckets) {
		panic(errors.AssertionFailedf("densemap: advancing past the end iterator"))
	}
	it.pos++
	it.advancePastEmptyBuckets()
}

// AtEnd reports whether the iterator is past the last live bucket.
func (it Iterator[K, V]) AtEnd() bool {
	return it.pos >= len(it.buckets)
}

// Equal reports whether both iterators denote the same position of the same
// table state. A retired iterator equals none taken after the change that
// retired it.
func (it Iterator[K, V]) Equal(other Iterator[K, V]) bool {
	return it.epoch == other.epoch && it.stamp == other.stamp && it.pos == other.pos
}
