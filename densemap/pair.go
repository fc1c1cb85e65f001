package densemap

// Pair is one bucket of a table. The value is laid out ahead of the key: gc
// pads a zero-size field only when it is the last one in a struct, so a Pair
// whose V occupies no memory is exactly as large as its K.
type Pair[K, V any] struct {
	second V
	first  K
}

// MakePair returns the bucket holding k and v.
func MakePair[K, V any](k K, v V) Pair[K, V] {
	return Pair[K, V]{second: v, first: k}
}

// GetFirst returns the key.
func (p *Pair[K, V]) GetFirst() *K {
	return &p.first
}

// GetSecond returns the value.
func (p *Pair[K, V]) GetSecond() *V {
	return &p.second
}
