package fuzzy

import (
	"ms-attendance/internal/config"
	"ms-attendance/internal/normalize"
)

// Matcher decides whether a scanned value and a stored value describe the
// same thing, using per-field-type acceptance thresholds.
type Matcher struct {
	norm *normalize.Cache
	cfg  config.MatchingConfig
}

func NewMatcher(norm *normalize.Cache, cfg config.MatchingConfig) *Matcher {
	return &Matcher{norm: norm, cfg: cfg}
}

// Score normalizes both values for the field type and returns their
// similarity, bounded by the configured edit budget.
func (m *Matcher) Score(stored, scanned string, fieldType normalize.FieldType) float64 {
	a := m.norm.Normalize(stored, fieldType)
	b := m.norm.Normalize(scanned, fieldType)
	return BoundedSimilarity(a, b, m.cfg.MaxEditDistance)
}

// Matches reports whether the similarity score clears the threshold for the
// field type.
func (m *Matcher) Matches(stored, scanned string, fieldType normalize.FieldType) bool {
	return m.Score(stored, scanned, fieldType) >= m.threshold(fieldType)
}

func (m *Matcher) threshold(fieldType normalize.FieldType) float64 {
	switch fieldType {
	case normalize.FieldIDNumber:
		return m.cfg.NIMThreshold
	case normalize.FieldName:
		return m.cfg.NameThreshold
	case normalize.FieldDivision:
		return m.cfg.DivisionThreshold
	default:
		// Unknown field types fall back to exact-ish matching.
		return 1.0
	}
}
