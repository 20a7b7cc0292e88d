package scan

import (
	"encoding/json"
	"strings"

	"ms-attendance/internal/cache"
	"ms-attendance/internal/models"
)

// PayloadValidator parses raw QR payload strings into ScanPayload records.
// Successful parses are memoized by the exact raw string, because the same
// physical QR code recurs across repeated scans of one person. Failures are
// deliberately never cached: a transient decode glitch should not stick.
type PayloadValidator struct {
	cache *cache.Bounded[string, models.ScanPayload]
}

func NewPayloadValidator(capacity int) *PayloadValidator {
	return &PayloadValidator{
		cache: cache.NewBounded[string, models.ScanPayload](capacity),
	}
}

// Validate parses raw and checks that all four required fields are present
// and non-empty. The second return is false for anything malformed.
func (v *PayloadValidator) Validate(raw string) (models.ScanPayload, bool) {
	if cached, ok := v.cache.Get(raw); ok {
		return cached, true
	}

	var payload models.ScanPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return models.ScanPayload{}, false
	}

	if strings.TrimSpace(payload.ID) == "" ||
		strings.TrimSpace(payload.Nama) == "" ||
		strings.TrimSpace(payload.NIM) == "" ||
		strings.TrimSpace(payload.Divisi) == "" {
		return models.ScanPayload{}, false
	}

	v.cache.Set(raw, payload)
	return payload, true
}

// CacheLen reports how many parses are memoized. Used by tests to check the
// success-only caching asymmetry.
func (v *PayloadValidator) CacheLen() int {
	return v.cache.Len()
}
