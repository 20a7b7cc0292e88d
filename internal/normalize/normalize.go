package normalize

import (
	"regexp"
	"strings"
	"sync"
)

// FieldType selects which canonicalization rules apply to a raw value.
type FieldType string

const (
	FieldIDNumber FieldType = "id-number"
	FieldName     FieldType = "name"
	FieldDivision FieldType = "division"
)

var (
	nonWordRe        = regexp.MustCompile(`[^\w]`)
	nonWordNonSpcRe  = regexp.MustCompile(`[^\w ]`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
	namePunctuationRe = regexp.MustCompile(`[.,;:!?'"()\-]`)
)

// Canonical applies the per-field-type canonicalization rules without caching.
func Canonical(raw string, fieldType FieldType) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	switch fieldType {
	case FieldIDNumber:
		s = whitespaceRe.ReplaceAllString(s, "")
		s = nonWordRe.ReplaceAllString(s, "")
	case FieldName:
		s = namePunctuationRe.ReplaceAllString(s, "")
		s = whitespaceRe.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
	case FieldDivision:
		s = strings.ReplaceAll(s, "&", "and")
		s = nonWordNonSpcRe.ReplaceAllString(s, "")
		s = whitespaceRe.ReplaceAllString(s, " ")
		s = strings.TrimSpace(s)
	}

	return s
}

type cacheKey struct {
	raw       string
	fieldType FieldType
}

// Cache memoizes canonical forms so repeated comparisons during a scan burst
// skip the regexp work. When the map outgrows its capacity the oldest quarter
// of entries is dropped in one batch; cheaper than LRU bookkeeping on every
// access, and hit-rate precision does not matter here.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[cacheKey]string
	order    []cacheKey
}

func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 256
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[cacheKey]string),
	}
}

// Normalize returns the canonical form of raw for the given field type,
// computing it once per distinct (raw, fieldType) pair.
func (c *Cache) Normalize(raw string, fieldType FieldType) string {
	key := cacheKey{raw: raw, fieldType: fieldType}

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	canonical := Canonical(raw, fieldType)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		c.entries[key] = canonical
		c.order = append(c.order, key)
	}

	if len(c.entries) > c.capacity {
		c.evictOldestQuarter()
	}

	return canonical
}

// evictOldestQuarter drops the oldest 25% of entries in insertion order.
// Caller must hold the mutex.
func (c *Cache) evictOldestQuarter() {
	n := c.capacity / 4
	if n < 1 {
		n = 1
	}
	if n > len(c.order) {
		n = len(c.order)
	}
	for _, key := range c.order[:n] {
		delete(c.entries, key)
	}
	c.order = append([]cacheKey{}, c.order[n:]...)
}

// Len reports the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Reset clears the cache. Used between test cases.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]string)
	c.order = nil
}
