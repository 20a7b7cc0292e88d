package fuzzy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEditDistanceBasics(t *testing.T) {
	assert.Equal(t, 0, EditDistance("budi santoso", "budi santoso", DefaultMaxDistance))
	assert.Equal(t, 1, EditDistance("budi", "budi ", DefaultMaxDistance))
	assert.Equal(t, 3, EditDistance("kitten", "sitting", DefaultMaxDistance))
	assert.Equal(t, 4, EditDistance("", "abcd", DefaultMaxDistance))
}

func TestEditDistanceSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"kestari", "konsumsi"},
		{"12345678", "12345687"},
		{"", "humas"},
	}
	for _, pair := range pairs {
		ab := EditDistance(pair[0], pair[1], DefaultMaxDistance)
		ba := EditDistance(pair[1], pair[0], DefaultMaxDistance)
		assert.Equal(t, ab, ba, "distance must be symmetric for %q/%q", pair[0], pair[1])
	}
}

func TestEditDistanceSentinelOnLengthGap(t *testing.T) {
	// A length gap bigger than the budget must short-circuit before any DP
	// work. With 100k characters the full table would be ~10^5 cells per
	// row; returning promptly is the observable proof it was skipped.
	long := strings.Repeat("a", 100000)

	start := time.Now()
	distance := EditDistance(long, "x", 8)
	elapsed := time.Since(start)

	assert.Equal(t, 9, distance)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestEditDistanceRowAbort(t *testing.T) {
	// Equal lengths, so the gap check passes, but every row quickly exceeds
	// the budget and the loop must bail with the sentinel.
	a := strings.Repeat("a", 1000)
	b := strings.Repeat("b", 1000)
	assert.Equal(t, 9, EditDistance(a, b, 8))
}

func TestSimilarityIdentities(t *testing.T) {
	for _, s := range []string{"a", "budi santoso", "12345678", "kestari"} {
		assert.Equal(t, 1.0, Similarity(s, s))
	}

	assert.Equal(t, 0.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("budi", ""))
	assert.Equal(t, 0.0, Similarity("", "budi"))
}

func TestBoundedSimilarityZeroesOutPastBudget(t *testing.T) {
	base := strings.Repeat("a", 100)
	nineEdits := strings.Repeat("a", 91) + strings.Repeat("b", 9)

	// Within the budget the score stays length-relative.
	assert.InDelta(t, 0.92, BoundedSimilarity(base, strings.Repeat("a", 92)+strings.Repeat("b", 8), 8), 1e-9)
	// One edit past the budget collapses to zero, not to 0.91.
	assert.Equal(t, 0.0, BoundedSimilarity(base, nineEdits, 8))
	// Without a budget the same pair scores by length.
	assert.InDelta(t, 0.91, BoundedSimilarity(base, nineEdits, -1), 1e-9)
}

func TestSimilarityScore(t *testing.T) {
	// One substitution in ten characters.
	assert.InDelta(t, 0.9, Similarity("abcdefghij", "abcdefghix"), 1e-9)
	// Two substitutions in ten characters.
	assert.InDelta(t, 0.8, Similarity("abcdefghij", "abcdefghxy"), 1e-9)
	// Unrelated strings bottom out at zero, never negative.
	score := Similarity("a", strings.Repeat("z", 40))
	assert.GreaterOrEqual(t, score, 0.0)
	assert.Less(t, score, 0.1)
}
