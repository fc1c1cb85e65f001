package cmd

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/fzft/go-dense/densemap"
	"github.com/fzft/go-dense/denseset"
)

// stringSet is what the shell needs from a set of members.
// *denseset.DenseSet[string] and every *denseset.SmallDenseSet[string, ...]
// provide it.
type stringSet interface {
	Empty() bool
	Size() int
	MemorySize() int
	Reserve(n int)
	Resize(n int)
	Clear()
	FindAs(l densemap.Lookup[string]) denseset.Iterator[string]
	InsertAs(v string, l densemap.Lookup[string]) (denseset.Iterator[string], bool)
	EraseIter(it denseset.Iterator[string])
	Values() []string
}

type swappable[T any] interface {
	stringSet
	Swap(other T)
}

// swapSets swaps a and b when both are a T.
func swapSets[T swappable[T]](a, b stringSet) bool {
	x, ok := a.(T)
	if !ok {
		return false
	}
	y, ok := b.(T)
	if !ok {
		return false
	}
	x.Swap(y)
	return true
}

// setKind makes the sets of one keyspace. All of them share a concrete type
// so that any two can be swapped.
type setKind struct {
	name string
	new  func() stringSet
	swap func(a, b stringSet) bool
}

func denseKind(reserve int) setKind {
	return setKind{
		name: "dense",
		new: func() stringSet {
			return denseset.New[string](densemap.StringInfo{}, reserve)
		},
		swap: swapSets[*denseset.DenseSet[string]],
	}
}

func smallKind[S any, PS densemap.InlineStorage[string, denseset.Empty, S]](reserve int) setKind {
	var inline S
	return setKind{
		name: fmt.Sprintf("small%d", len(PS(&inline).Buckets())),
		new: func() stringSet {
			return denseset.NewSmall[string, S, PS](densemap.StringInfo{}, reserve)
		},
		swap: swapSets[*denseset.SmallDenseSet[string, S, PS]],
	}
}

func kindFor(cfg *Config) setKind {
	if !cfg.Small {
		return denseKind(cfg.Reserve)
	}
	switch cfg.Inline {
	case 4:
		return smallKind[denseset.Inline4[string]](cfg.Reserve)
	case 16:
		return smallKind[denseset.Inline16[string]](cfg.Reserve)
	case 32:
		return smallKind[denseset.Inline32[string]](cfg.Reserve)
	default:
		return smallKind[denseset.Inline8[string]](cfg.Reserve)
	}
}

// keyspace holds the named sets in creation order.
type keyspace struct {
	kind setKind
	sets *orderedmap.OrderedMap[string, stringSet]
}

func newKeyspace(kind setKind) *keyspace {
	return &keyspace{
		kind: kind,
		sets: orderedmap.New[string, stringSet](),
	}
}

func (ks *keyspace) get(key []byte) (stringSet, bool) {
	return ks.sets.Get(string(key))
}

func (ks *keyspace) getOrCreate(key []byte) stringSet {
	if s, ok := ks.sets.Get(string(key)); ok {
		return s
	}
	s := ks.kind.new()
	ks.sets.Set(string(key), s)
	return s
}

func (ks *keyspace) remove(key []byte) bool {
	_, present := ks.sets.Delete(string(key))
	return present
}

// removeIfEmpty drops key once its set has no members left.
func (ks *keyspace) removeIfEmpty(key []byte) {
	if s, ok := ks.get(key); ok && s.Empty() {
		ks.remove(key)
	}
}

// swap exchanges the members of a and b. A missing side takes part as an
// empty set, and the key left holding that set is removed, so swapping with
// a missing key renames.
func (ks *keyspace) swap(a, b []byte) error {
	_, aPresent := ks.get(a)
	_, bPresent := ks.get(b)
	if !aPresent && !bPresent {
		return nil
	}
	x, y := ks.getOrCreate(a), ks.getOrCreate(b)
	if !ks.kind.swap(x, y) {
		return errWrongType
	}
	if !aPresent {
		ks.removeIfEmpty(b)
	}
	if !bPresent {
		ks.removeIfEmpty(a)
	}
	return nil
}

func (ks *keyspace) len() int {
	return ks.sets.Len()
}

func (ks *keyspace) keys() []string {
	keys := make([]string, 0, ks.sets.Len())
	for pair := ks.sets.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// stats sums members and bucket memory over every set.
func (ks *keyspace) stats() (members, memory int) {
	for pair := ks.sets.Oldest(); pair != nil; pair = pair.Next() {
		members += pair.Value.Size()
		memory += pair.Value.MemorySize()
	}
	return members, memory
}
