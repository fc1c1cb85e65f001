package denseset

import (
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/fzft/go-dense/densemap"
)

// Empty is the value half of every set bucket. It carries no data.
type Empty struct{}

// SetPair is the bucket of a set: a densemap.Pair whose value is Empty.
// GetFirst yields the element and GetSecond the Empty marker; the marker
// takes no room, so a SetPair is exactly as large as its element.
type SetPair[K any] = densemap.Pair[K, Empty]

// Bucket and element sizes must match; these fail to compile otherwise.
var (
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[int]{})-unsafe.Sizeof(int(0))]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[int32]{})-unsafe.Sizeof(int32(0))]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[int64]{})-unsafe.Sizeof(int64(0))]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[uint64]{})-unsafe.Sizeof(uint64(0))]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[uintptr]{})-unsafe.Sizeof(uintptr(0))]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[string]{})-unsafe.Sizeof("")]
	_ = [1]struct{}{}[unsafe.Sizeof(SetPair[[16]byte]{})-unsafe.Sizeof([16]byte{})]
)

// checkLayout covers element types the declarations above cannot name.
func checkLayout[K any]() {
	var (
		p SetPair[K]
		k K
	)
	if unsafe.Sizeof(p) != unsafe.Sizeof(k) {
		panic(errors.AssertionFailedf("denseset: buckets unexpectedly large: %d bytes for %d-byte elements",
			unsafe.Sizeof(p), unsafe.Sizeof(k)))
	}
}
