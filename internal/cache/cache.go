package cache

import (
	"sync"
)

// Bounded is a capacity-limited key→value map used to shield the database
// from repeated point lookups during a scan burst. Eviction is oldest
// insertion first, not LRU: correctness never depends on what is cached,
// only latency does.
type Bounded[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[K]V
	order    []K
}

func NewBounded[K comparable, V any](capacity int) *Bounded[K, V] {
	if capacity <= 0 {
		capacity = 64
	}
	return &Bounded[K, V]{
		capacity: capacity,
		entries:  make(map[K]V),
	}
}

func (c *Bounded[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	return value, ok
}

func (c *Bounded[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = value

	for len(c.entries) > c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

func (c *Bounded[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		return
	}
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears the cache. Used between test cases.
func (c *Bounded[K, V]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]V)
	c.order = nil
}
