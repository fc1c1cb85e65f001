package denseset

import (
	"iter"

	"github.com/fzft/go-dense/densemap"
)

// Table is what Impl needs from the hash table it stores its elements in.
// *densemap.Map and *densemap.SmallMap provide it with Empty as the value.
type Table[K, M any] interface {
	*M
	Init(info densemap.KeyInfo[K], reserve int)
	Empty() bool
	Size() int
	MemorySize() int
	Resize(n int)
	Reserve(n int)
	Clear()
	Swap(other *M)
	Count(k K) int
	Find(k K) densemap.Iterator[K, Empty]
	FindAs(l densemap.Lookup[K]) densemap.Iterator[K, Empty]
	TryEmplace(k K, v Empty) (densemap.Iterator[K, Empty], bool)
	InsertAs(p SetPair[K], l densemap.Lookup[K]) (densemap.Iterator[K, Empty], bool)
	Erase(k K) bool
	EraseAt(it densemap.Iterator[K, Empty])
	RemoveIf(pred func(p *SetPair[K]) bool) bool
	Begin() densemap.Iterator[K, Empty]
	End() densemap.Iterator[K, Empty]
}

// Impl is a set stored in a table of type M. Every operation is forwarded
// to the table with Empty as the value, and table positions come back as
// element-only iterators. DenseSet and SmallDenseSet are its two
// instantiations.
//
// An Impl is owned by one goroutine at a time and must not be copied.
type Impl[K, M any, PM Table[K, M]] struct {
	m M
}

func (s *Impl[K, M, PM]) table() PM {
	return PM(&s.m)
}

func (s *Impl[K, M, PM]) init(info densemap.KeyInfo[K], reserve int) {
	checkLayout[K]()
	s.table().Init(info, reserve)
}

func (s *Impl[K, M, PM]) Empty() bool {
	return s.table().Empty()
}

func (s *Impl[K, M, PM]) Size() int {
	return s.table().Size()
}

// MemorySize returns the bytes held by the bucket array.
func (s *Impl[K, M, PM]) MemorySize() int {
	return s.table().MemorySize()
}

// Resize grows the set to at least n buckets. It never shrinks.
func (s *Impl[K, M, PM]) Resize(n int) {
	s.table().Resize(n)
}

// Reserve makes room for n more elements before the set grows again.
func (s *Impl[K, M, PM]) Reserve(n int) {
	s.table().Reserve(n)
}

// Clear removes every element. The buckets stay allocated.
func (s *Impl[K, M, PM]) Clear() {
	s.table().Clear()
}

// Count returns 1 if v is in the set, 0 otherwise.
func (s *Impl[K, M, PM]) Count(v K) int {
	return s.table().Count(v)
}

// Contains reports whether v is in the set.
func (s *Impl[K, M, PM]) Contains(v K) bool {
	return s.table().Count(v) == 1
}

// Erase removes v and reports whether it was present.
func (s *Impl[K, M, PM]) Erase(v K) bool {
	return s.table().Erase(v)
}

// Swap exchanges the contents of s and other.
func (s *Impl[K, M, PM]) Swap(other *Impl[K, M, PM]) {
	s.table().Swap(&other.m)
}

func (s *Impl[K, M, PM]) Begin() Iterator[K] {
	return Iterator[K]{s.table().Begin()}
}

func (s *Impl[K, M, PM]) End() Iterator[K] {
	return Iterator[K]{s.table().End()}
}

func (s *Impl[K, M, PM]) ConstBegin() ConstIterator[K] {
	return ConstIterator[K]{s.table().Begin()}
}

func (s *Impl[K, M, PM]) ConstEnd() ConstIterator[K] {
	return ConstIterator[K]{s.table().End()}
}

// Find returns the position of v, or End.
func (s *Impl[K, M, PM]) Find(v K) Iterator[K] {
	return Iterator[K]{s.table().Find(v)}
}

func (s *Impl[K, M, PM]) ConstFind(v K) ConstIterator[K] {
	return ConstIterator[K]{s.table().Find(v)}
}

// FindAs is Find with an alternate, possibly cheaper, key. The KeyInfo the
// lookup was bound with must hash and compare it consistently with the
// set's elements.
func (s *Impl[K, M, PM]) FindAs(l densemap.Lookup[K]) Iterator[K] {
	return Iterator[K]{s.table().FindAs(l)}
}

func (s *Impl[K, M, PM]) ConstFindAs(l densemap.Lookup[K]) ConstIterator[K] {
	return ConstIterator[K]{s.table().FindAs(l)}
}

// EraseIter removes the element it rests on. it is retired by the call.
func (s *Impl[K, M, PM]) EraseIter(it Iterator[K]) {
	s.table().EraseAt(it.it)
}

func (s *Impl[K, M, PM]) EraseConstIter(it ConstIterator[K]) {
	s.table().EraseAt(it.it)
}

// Insert adds v unless an equal element is present. It returns the
// position of the element equal to v and whether v was inserted.
func (s *Impl[K, M, PM]) Insert(v K) (Iterator[K], bool) {
	it, inserted := s.table().TryEmplace(v, Empty{})
	return Iterator[K]{it}, inserted
}

// InsertAs is Insert with presence decided by l instead of v: v is stored
// only if nothing matching l is in the set yet.
func (s *Impl[K, M, PM]) InsertAs(v K, l densemap.Lookup[K]) (Iterator[K], bool) {
	it, inserted := s.table().InsertAs(densemap.MakePair(v, Empty{}), l)
	return Iterator[K]{it}, inserted
}

// InsertRange inserts every element of seq.
func (s *Impl[K, M, PM]) InsertRange(seq iter.Seq[K]) {
	for v := range seq {
		s.Insert(v)
	}
}

// InsertAll inserts every element of vs.
func (s *Impl[K, M, PM]) InsertAll(vs ...K) {
	for _, v := range vs {
		s.Insert(v)
	}
}

// RemoveIf erases every element for which pred returns true and reports
// whether any was erased.
func (s *Impl[K, M, PM]) RemoveIf(pred func(v K) bool) bool {
	return s.table().RemoveIf(func(p *SetPair[K]) bool {
		return pred(*p.GetFirst())
	})
}

// All yields the elements in bucket order. The set must not change while
// the sequence is being consumed.
func (s *Impl[K, M, PM]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for it := s.ConstBegin(); !it.AtEnd(); it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

// Values returns the elements in bucket order.
func (s *Impl[K, M, PM]) Values() []K {
	out := make([]K, 0, s.Size())
	for v := range s.All() {
		out = append(out, v)
	}
	return out
}
