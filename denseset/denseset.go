// Package denseset provides hash sets that live in densemap tables.
//
// A set is a table whose value type is the zero-size Empty, so each bucket is
// just the element. DenseSet keeps its buckets on the heap; SmallDenseSet
// keeps a compile-time number of them inline and moves to the heap once it
// outgrows them. Both expose the same operations through Impl.
//
//	s := denseset.Of(densemap.IntegerInfo[int]{}, 1, 2, 3)
//	s.Insert(4)
//	if s.Contains(2) { ... }
//
// Sets are not safe for concurrent use.
package denseset

import "github.com/fzft/go-dense/densemap"

// DenseSet is a set backed by a heap-allocated densemap.Map. The zero value
// is not usable; create one with New or Of.
type DenseSet[K any] = Impl[K, densemap.Map[K, Empty], *densemap.Map[K, Empty]]

// New returns an empty DenseSet with room for reserve elements.
func New[K any](info densemap.KeyInfo[K], reserve int) *DenseSet[K] {
	s := &DenseSet[K]{}
	s.init(info, reserve)
	return s
}

// Of returns a DenseSet holding elems. Duplicates collapse.
func Of[K any](info densemap.KeyInfo[K], elems ...K) *DenseSet[K] {
	s := New(info, len(elems))
	s.InsertAll(elems...)
	return s
}

// SmallDenseSet is a set backed by a densemap.SmallMap whose inline bucket
// count is fixed by S, one of the Inline aliases below. The zero value is not
// usable; create one with NewSmall or SmallOf.
type SmallDenseSet[K, S any, PS densemap.InlineStorage[K, Empty, S]] = Impl[K, densemap.SmallMap[K, Empty, S, PS], *densemap.SmallMap[K, Empty, S, PS]]

// Inline bucket arrays for SmallDenseSet.
type (
	Inline4[K any]  = densemap.Inline4[K, Empty]
	Inline8[K any]  = densemap.Inline8[K, Empty]
	Inline16[K any] = densemap.Inline16[K, Empty]
	Inline32[K any] = densemap.Inline32[K, Empty]
)

// NewSmall returns an empty SmallDenseSet with room for reserve elements.
//
//	s := denseset.NewSmall[string, denseset.Inline8[string]](densemap.StringInfo{}, 0)
func NewSmall[K, S any, PS densemap.InlineStorage[K, Empty, S]](info densemap.KeyInfo[K], reserve int) *SmallDenseSet[K, S, PS] {
	s := &SmallDenseSet[K, S, PS]{}
	s.init(info, reserve)
	return s
}

// SmallOf returns a SmallDenseSet holding elems. Duplicates collapse.
func SmallOf[K, S any, PS densemap.InlineStorage[K, Empty, S]](info densemap.KeyInfo[K], elems ...K) *SmallDenseSet[K, S, PS] {
	s := NewSmall[K, S, PS](info, len(elems))
	s.InsertAll(elems...)
	return s
}
