package denseset

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fzft/go-dense/densemap"
)

func TestFindAsMatchesFind(t *testing.T) {
	s := Of[string](densemap.StringInfo{}, "alpha", "beta", "gamma")

	for _, word := range []string{"alpha", "beta", "gamma", "delta"} {
		byKey := s.Find(word)
		byBytes := s.FindAs(densemap.LookupBytes([]byte(word)))
		assert.True(t, byKey.Equal(byBytes), word)
		assert.Equal(t, byKey.AtEnd(), s.ConstFindAs(densemap.LookupBytes([]byte(word))).AtEnd(), word)
	}
}

func TestInsertAsMatchesInsert(t *testing.T) {
	s := New[string](densemap.StringInfo{}, 0)

	raw := []byte("key")
	it, inserted := s.InsertAs(string(raw), densemap.LookupBytes(raw))
	require.True(t, inserted)
	assert.Equal(t, "key", it.Value())

	_, inserted = s.InsertAs("key", densemap.As[[]byte, string]([]byte("key"), densemap.StringInfo{}))
	assert.False(t, inserted)
	_, inserted = s.Insert("key")
	assert.False(t, inserted)
	assert.Equal(t, 1, s.Size())
}

func TestSmallStringSet(t *testing.T) {
	s := SmallOf[string, Inline8[string]](densemap.StringInfo{}, "a", "b", "a")
	assert.Equal(t, 2, s.Size())
	assert.False(t, s.FindAs(densemap.LookupBytes([]byte("b"))).AtEnd())
	assert.Panics(t, func() { s.Insert(densemap.StringInfo{}.EmptyKey()) })
	assert.Panics(t, func() { s.Insert(densemap.StringInfo{}.TombstoneKey()) })
}

// uuidText probes a uuid set with the canonical text form.
type uuidText struct {
	info *densemap.ComparableInfo[uuid.UUID]
}

func (u uuidText) HashLookup(s string) uint64 {
	return u.info.HashValue(uuid.MustParse(s))
}

func (u uuidText) IsEqualLookup(s string, k uuid.UUID) bool {
	return k.String() == s
}

func TestComparableElements(t *testing.T) {
	info := densemap.NewComparableInfo(uuid.Nil, uuid.Max)
	s := New[uuid.UUID](info, 0)

	ids := make([]uuid.UUID, 200)
	for i := range ids {
		ids[i] = uuid.New()
		_, inserted := s.Insert(ids[i])
		require.True(t, inserted)
	}
	assert.Equal(t, len(ids), s.Size())

	text := uuidText{info: info}
	for _, id := range ids {
		it := s.FindAs(densemap.As[string, uuid.UUID](id.String(), text))
		require.False(t, it.AtEnd())
		assert.Equal(t, id, it.Value())
	}
	assert.True(t, s.FindAs(densemap.As[string, uuid.UUID](uuid.NewString(), text)).AtEnd())
	assert.Panics(t, func() { s.Insert(uuid.Nil) })
}

func TestBucketsAreElementSized(t *testing.T) {
	type point struct{ x, y int32 }

	assert.Equal(t, unsafe.Sizeof(point{}), unsafe.Sizeof(SetPair[point]{}))
	assert.Equal(t, unsafe.Sizeof(uuid.UUID{}), unsafe.Sizeof(SetPair[uuid.UUID]{}))
	assert.NotPanics(t, checkLayout[point])
	assert.NotPanics(t, checkLayout[*int])

	var p SetPair[int]
	*p.GetFirst() = 3
	assert.Equal(t, 3, *p.GetFirst())
	assert.Equal(t, Empty{}, *p.GetSecond())
}

func TestIndependentSetsAcrossGoroutines(t *testing.T) {
	const workers = 8
	sizes := make([]int, workers)

	var wg conc.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Go(func() {
			s := New[string](densemap.StringInfo{}, 0)
			for i := 0; i < 500*(w+1); i++ {
				s.Insert(fmt.Sprintf("w%d-%d", w, i%(250*(w+1))))
			}
			sizes[w] = s.Size()
		})
	}
	wg.Wait()

	for w, size := range sizes {
		assert.Equal(t, 250*(w+1), size, "worker %d", w)
	}
}
