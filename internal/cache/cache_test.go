package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedGetSet(t *testing.T) {
	c := NewBounded[string, int](4)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	value, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, value)

	// Overwriting does not grow the cache.
	c.Set("a", 2)
	assert.Equal(t, 1, c.Len())
	value, _ = c.Get("a")
	assert.Equal(t, 2, value)
}

func TestBoundedEvictsOldestInsertion(t *testing.T) {
	c := NewBounded[string, int](3)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("d")
	assert.True(t, ok)
	assert.Equal(t, 3, c.Len())
}

func TestBoundedDeleteAndReset(t *testing.T) {
	c := NewBounded[int64, string](4)

	c.Set(1, "one")
	c.Set(2, "two")
	c.Delete(1)

	_, ok := c.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
}

func TestBoundedConcurrentAccess(t *testing.T) {
	c := NewBounded[string, int](16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%20)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
