package fuzzy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-attendance/internal/config"
	"ms-attendance/internal/normalize"
)

func newTestMatcher() *Matcher {
	return NewMatcher(normalize.NewCache(64), config.MatchingConfig{
		NIMThreshold:      0.95,
		NameThreshold:     0.90,
		DivisionThreshold: 0.80,
		MaxEditDistance:   8,
	})
}

func TestMatchesNameThresholdBoundary(t *testing.T) {
	m := newTestMatcher()

	// Ten characters, one substitution: similarity exactly 0.9, accepted.
	assert.True(t, m.Matches("abcdefghij", "abcdefghix", normalize.FieldName))
	// Two substitutions: similarity 0.8, rejected.
	assert.False(t, m.Matches("abcdefghij", "abcdefghxy", normalize.FieldName))
}

func TestMatchesNIMToleratesFormattingOnly(t *testing.T) {
	m := newTestMatcher()

	// Whitespace and case are normalization noise, not edits.
	assert.True(t, m.Matches("12345678", " 1234 5678 ", normalize.FieldIDNumber))
	// A real digit swap on an 8-char id is below 0.95.
	assert.False(t, m.Matches("12345678", "12345687", normalize.FieldIDNumber))
}

func TestMatchesDivisionVariants(t *testing.T) {
	m := newTestMatcher()

	assert.True(t, m.Matches("KESTARI", "kestari ", normalize.FieldDivision))
	assert.True(t, m.Matches("Acara & Lomba", "acara and lomba", normalize.FieldDivision))
	assert.False(t, m.Matches("KESTARI", "Humas", normalize.FieldDivision))
}

func TestMatchesEnforcesEditBudget(t *testing.T) {
	m := newTestMatcher()

	// 100 characters with 9 substitutions: the length-relative score alone
	// would be 0.91, above the name threshold, but 9 edits exceed the
	// configured budget of 8 so the pair must not match.
	stored := strings.Repeat("a", 100)
	scanned := strings.Repeat("a", 91) + strings.Repeat("b", 9)
	assert.False(t, m.Matches(stored, scanned, normalize.FieldName))

	// Eight edits sit exactly on the budget and score 0.92, accepted.
	scanned = strings.Repeat("a", 92) + strings.Repeat("b", 8)
	assert.True(t, m.Matches(stored, scanned, normalize.FieldName))
}

func TestMatchesUnknownFieldTypeRequiresExact(t *testing.T) {
	m := newTestMatcher()

	assert.True(t, m.Matches("same", "same", normalize.FieldType("other")))
	assert.False(t, m.Matches("same", "sam", normalize.FieldType("other")))
}
