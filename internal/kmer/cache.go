package kmer

// seqCache is a fixed-size ring of recently encoded sequences.
type seqCache struct {
	capacity int
	order    []string
	index    int
	values   map[string][]int32
}

func newSeqCache(capacity int) *seqCache {
	if capacity <= 0 {
		return nil
	}
	return &seqCache{
		capacity: capacity,
		order:    make([]string, capacity),
		values:   make(map[string][]int32, capacity),
	}
}

func (c *seqCache) get(key string) ([]int32, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

func (c *seqCache) add(key string, val []int32) {
	if c == nil {
		return
	}
	if _, ok := c.values[key]; ok {
		return
	}
	slot := c.index % c.capacity
	if c.index >= c.capacity {
		delete(c.values, c.order[slot])
	}
	c.order[slot] = key
	c.values[key] = cloneInt32(val)
	c.index++
}

func cloneInt32(src []int32) []int32 {
	dst := make([]int32, len(src))
	copy(dst, src)
	return dst
}
