package fuzzy

// DefaultMaxDistance bounds the edit-distance search when the caller has no
// tighter budget.
const DefaultMaxDistance = 8

// EditDistance computes the Levenshtein distance between a and b, giving up
// once the distance provably exceeds maxDistance. In that case it returns
// maxDistance+1 as a "too far, don't care" sentinel.
func EditDistance(a, b string, maxDistance int) int {
	if a == b {
		return 0
	}
	if maxDistance < 0 {
		maxDistance = DefaultMaxDistance
	}

	ra := []rune(a)
	rb := []rune(b)

	// The distance is at least the length gap, so a big gap means the full
	// table is never worth building.
	gap := len(ra) - len(rb)
	if gap < 0 {
		gap = -gap
	}
	if gap > maxDistance {
		return maxDistance + 1
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			ins := curr[j-1] + 1
			del := prev[j] + 1
			sub := prev[j-1] + cost

			min := ins
			if del < min {
				min = del
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
			if min < rowMin {
				rowMin = min
			}
		}
		// Every cell in this row is already past the budget; no later row
		// can come back under it.
		if rowMin > maxDistance {
			return maxDistance + 1
		}
		prev, curr = curr, prev
	}

	distance := prev[len(rb)]
	if distance > maxDistance {
		return maxDistance + 1
	}
	return distance
}

// Similarity returns a [0,1] score where 1 means identical. Empty strings
// never match anything, including each other.
func Similarity(x, y string) float64 {
	return BoundedSimilarity(x, y, -1)
}

// BoundedSimilarity is Similarity under an edit budget: strings whose distance
// provably exceeds maxDistance score 0 regardless of length, so a long pair
// cannot ride a high length-relative score past a threshold on raw edit count
// alone. A negative maxDistance means no budget beyond the string lengths.
func BoundedSimilarity(x, y string, maxDistance int) float64 {
	if x == "" || y == "" {
		return 0
	}
	if x == y {
		return 1
	}

	longer := len([]rune(x))
	if l := len([]rune(y)); l > longer {
		longer = l
	}
	if maxDistance < 0 || maxDistance > longer {
		maxDistance = longer
	}

	distance := EditDistance(x, y, maxDistance)
	if distance > maxDistance {
		return 0
	}
	return float64(longer-distance) / float64(longer)
}
