package denseset

import "github.com/fzft/go-dense/densemap"

// Iterator walks the elements of a set in bucket order. It exposes the
// element only, never the bucket's Empty payload. Like the table iterator it
// wraps, it is retired by any structural change to the set.
type Iterator[K any] struct {
	it densemap.Iterator[K, Empty]
}

// Value returns the element.
func (i Iterator[K]) Value() K {
	return *i.it.Bucket().GetFirst()
}

// Pointer returns the element in place. Changing its hash or identity
// corrupts the set.
func (i Iterator[K]) Pointer() *K {
	return i.it.Bucket().GetFirst()
}

// Next moves to the following element, or to the end.
func (i *Iterator[K]) Next() {
	i.it.Next()
}

// AtEnd reports whether the iterator has passed the last element.
func (i Iterator[K]) AtEnd() bool {
	return i.it.AtEnd()
}

// Equal reports whether both iterators denote the same position.
func (i Iterator[K]) Equal(other Iterator[K]) bool {
	return i.it.Equal(other.it)
}

// Const returns the read-only view of the same position.
func (i Iterator[K]) Const() ConstIterator[K] {
	return ConstIterator[K](i)
}

// ConstIterator is the read-only counterpart of Iterator.
type ConstIterator[K any] struct {
	it densemap.Iterator[K, Empty]
}

func (i ConstIterator[K]) Value() K {
	return *i.it.Bucket().GetFirst()
}

func (i *ConstIterator[K]) Next() {
	i.it.Next()
}

func (i ConstIterator[K]) AtEnd() bool {
	return i.it.AtEnd()
}

func (i ConstIterator[K]) Equal(other ConstIterator[K]) bool {
	return i.it.Equal(other.it)
}
