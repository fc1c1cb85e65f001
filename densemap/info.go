package densemap

import (
	"hash/maphash"
	"unsafe"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// KeyInfo tells a table how to hash and compare its keys, and which two key
// values it may use to mark never-used and erased buckets. Neither reserved
// key may ever be inserted, and they must differ from each other.
type KeyInfo[K any] interface {
	EmptyKey() K
	TombstoneKey() K
	HashValue(k K) uint64
	IsEqual(a, b K) bool
}

// LookupInfo lets a table be probed with an L instead of a K.
// HashLookup(l) must equal HashValue(k) whenever IsEqualLookup(l, k) holds.
type LookupInfo[L, K any] interface {
	HashLookup(l L) uint64
	IsEqualLookup(l L, k K) bool
}

// Lookup is an alternate key already bound to its LookupInfo. Build one with As.
type Lookup[K any] interface {
	Hash() uint64
	Equal(k K) bool
}

type boundLookup[L, K any] struct {
	key  L
	info LookupInfo[L, K]
}

func (b boundLookup[L, K]) Hash() uint64 {
	return b.info.HashLookup(b.key)
}

func (b boundLookup[L, K]) Equal(k K) bool {
	return b.info.IsEqualLookup(b.key, k)
}

// As binds l to info so that it can be passed to FindAs or InsertAs.
func As[L, K any](l L, info LookupInfo[L, K]) Lookup[K] {
	return boundLookup[L, K]{key: l, info: info}
}

// keyLookup probes with a plain key.
type keyLookup[K any] struct {
	key  K
	info KeyInfo[K]
}

func (l keyLookup[K]) Hash() uint64 {
	return l.info.HashValue(l.key)
}

func (l keyLookup[K]) Equal(k K) bool {
	return l.info.IsEqual(l.key, k)
}

func checkInfo[K any](info KeyInfo[K]) {
	if info == nil {
		panic(errors.AssertionFailedf("densemap: nil KeyInfo"))
	}
	if info.IsEqual(info.EmptyKey(), info.TombstoneKey()) {
		panic(errors.AssertionFailedf("densemap: empty and tombstone keys must differ"))
	}
}

/* ----------------------------------------------------------------------------
 * Integer keys
 * --------------------------------------------------------------------------*/

// IntegerInfo is the KeyInfo for the built-in integer kinds. Unsigned types
// reserve their two largest values, signed types their maximum and minimum.
type IntegerInfo[T constraints.Integer] struct{}

func signed[T constraints.Integer]() bool {
	return ^T(0) < 0
}

func maxSigned[T constraints.Integer]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	return T(uint64(1)<<(bits-1) - 1)
}

func (IntegerInfo[T]) EmptyKey() T {
	if signed[T]() {
		return maxSigned[T]()
	}
	return ^T(0)
}

func (IntegerInfo[T]) TombstoneKey() T {
	if signed[T]() {
		return -maxSigned[T]() - 1
	}
	return ^T(0) - 1
}

func (IntegerInfo[T]) HashValue(k T) uint64 {
	return uint64(k) * 37
}

func (IntegerInfo[T]) IsEqual(a, b T) bool {
	return a == b
}

/* ----------------------------------------------------------------------------
 * String keys
 * --------------------------------------------------------------------------*/

// Reserved strings are not valid UTF-8.
const (
	stringEmptyKey     = "\xff\xfe<densemap empty>"
	stringTombstoneKey = "\xff\xfe<densemap tombstone>"
)

// StringInfo is the KeyInfo for string keys. It is also a
// LookupInfo[[]byte, string]: tables of strings can be probed with a byte
// slice without converting it first.
type StringInfo struct{}

func (StringInfo) EmptyKey() string {
	return stringEmptyKey
}

func (StringInfo) TombstoneKey() string {
	return stringTombstoneKey
}

func (StringInfo) HashValue(k string) uint64 {
	return xxhash.Sum64String(k)
}

func (StringInfo) IsEqual(a, b string) bool {
	return a == b
}

func (StringInfo) HashLookup(b []byte) uint64 {
	return xxhash.Sum64(b)
}

func (StringInfo) IsEqualLookup(b []byte, k string) bool {
	return string(b) == k
}

// LookupBytes probes a string table with b without converting it.
func LookupBytes(b []byte) Lookup[string] {
	return As[[]byte, string](b, StringInfo{})
}

/* ----------------------------------------------------------------------------
 * Arbitrary comparable keys
 * --------------------------------------------------------------------------*/

// ComparableInfo is a KeyInfo for any comparable type, with the reserved keys
// chosen by the caller. Hashes are seeded per instance, so tables that are
// swapped with each other must share one ComparableInfo.
type ComparableInfo[K comparable] struct {
	seed      maphash.Seed
	empty     K
	tombstone K
}

// NewComparableInfo returns a ComparableInfo reserving empty and tombstone.
func NewComparableInfo[K comparable](empty, tombstone K) *ComparableInfo[K] {
	if empty == tombstone {
		panic(errors.AssertionFailedf("densemap: empty and tombstone keys must differ"))
	}
	return &ComparableInfo[K]{
		seed:      maphash.MakeSeed(),
		empty:     empty,
		tombstone: tombstone,
	}
}

func (c *ComparableInfo[K]) EmptyKey() K {
	return c.empty
}

func (c *ComparableInfo[K]) TombstoneKey() K {
	return c.tombstone
}

func (c *ComparableInfo[K]) HashValue(k K) uint64 {
	return maphash.Comparable(c.seed, k)
}

func (c *ComparableInfo[K]) IsEqual(a, b K) bool {
	return a == b
}
