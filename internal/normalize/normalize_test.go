package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalIDNumber(t *testing.T) {
	assert.Equal(t, "123456ab", Canonical(" 123 456-AB ", FieldIDNumber))
	assert.Equal(t, "12345678", Canonical("12345678", FieldIDNumber))
}

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "budi santoso", Canonical("  Budi,   Santoso! ", FieldName))
	assert.Equal(t, "dr andi wijaya", Canonical("Dr. Andi Wijaya", FieldName))
}

func TestCanonicalDivision(t *testing.T) {
	assert.Equal(t, "kestari and konsumsi", Canonical("KESTARI & Konsumsi", FieldDivision))
	assert.Equal(t, "humas", Canonical(" Humas. ", FieldDivision))
}

func TestCanonicalIsIdempotent(t *testing.T) {
	inputs := []string{
		" 123 456-AB ",
		"  Budi,   Santoso! ",
		"KESTARI & Konsumsi",
		"Acara & Lomba (hari-H)",
	}
	for _, fieldType := range []FieldType{FieldIDNumber, FieldName, FieldDivision} {
		for _, input := range inputs {
			once := Canonical(input, fieldType)
			twice := Canonical(once, fieldType)
			assert.Equal(t, once, twice, "normalize(%q, %s) must be idempotent", input, fieldType)
		}
	}
}

func TestCacheMemoizes(t *testing.T) {
	c := NewCache(64)

	first := c.Normalize("KESTARI & Konsumsi", FieldDivision)
	second := c.Normalize("KESTARI & Konsumsi", FieldDivision)

	assert.Equal(t, "kestari and konsumsi", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.Len())
}

func TestCacheEvictsOldestQuarter(t *testing.T) {
	c := NewCache(8)

	for i := 0; i < 9; i++ {
		c.Normalize(fmt.Sprintf("divisi-%d", i), FieldDivision)
	}

	// Crossing capacity 8 drops the oldest 8/4 = 2 entries in one batch.
	assert.Equal(t, 7, c.Len())
}

func TestCacheReset(t *testing.T) {
	c := NewCache(8)
	c.Normalize("Humas", FieldDivision)
	c.Reset()
	assert.Equal(t, 0, c.Len())
}
