package admission

import (
	"context"
	"fmt"
	"strings"

	"ms-attendance/internal/cache"
	"ms-attendance/internal/fuzzy"
	"ms-attendance/internal/models"
	"ms-attendance/internal/normalize"
)

type DBLayer interface {
	GetAllowedDivisions(ctx context.Context, kegiatanID int64) ([]string, error)
	GetDistinctActiveDivisions(ctx context.Context) ([]string, error)
	ReplaceAllowedDivisions(ctx context.Context, kegiatanID int64, divisions []string) error
}

// Checker decides whether a member's division is allowed to check into a
// kegiatan. Allowed-division lists are cached per kegiatan id because every
// person in a check-in queue hits the same event.
type Checker struct {
	DB            DBLayer
	Matcher       *fuzzy.Matcher
	DivisionLists *cache.Bounded[int64, []string]
}

func NewChecker(db DBLayer, matcher *fuzzy.Matcher, lists *cache.Bounded[int64, []string]) *Checker {
	return &Checker{DB: db, Matcher: matcher, DivisionLists: lists}
}

// Check resolves the kegiatan's admission set and reports whether the
// member's division fuzzy-matches any entry. The allowed list is always
// returned so rejections can show it to the operator.
func (c *Checker) Check(ctx context.Context, kegiatanID int64, memberDivisi string) (bool, []string, error) {
	allowed, ok := c.DivisionLists.Get(kegiatanID)
	if !ok {
		var err error
		allowed, err = c.DB.GetAllowedDivisions(ctx, kegiatanID)
		if err != nil {
			return false, nil, fmt.Errorf("failed to load admission set for kegiatan %d: %w", kegiatanID, err)
		}
		c.DivisionLists.Set(kegiatanID, allowed)
	}

	if len(allowed) == 0 {
		return false, allowed, nil
	}

	for _, divisi := range allowed {
		if c.Matcher.Matches(divisi, memberDivisi, normalize.FieldDivision) {
			return true, allowed, nil
		}
	}
	return false, allowed, nil
}

// Configure replaces the kegiatan's admission set. The "Semua Divisi"
// sentinel is expanded here, at configuration time, into the distinct
// divisions of currently active members; checks never see the sentinel.
// Returns the stored list.
func (c *Checker) Configure(ctx context.Context, kegiatanID int64, divisions []string) ([]string, error) {
	expanded := make([]string, 0, len(divisions))
	seen := make(map[string]bool)

	appendDivision := func(divisi string) {
		divisi = strings.TrimSpace(divisi)
		if divisi == "" {
			return
		}
		key := normalize.Canonical(divisi, normalize.FieldDivision)
		if seen[key] {
			return
		}
		seen[key] = true
		expanded = append(expanded, divisi)
	}

	for _, divisi := range divisions {
		if isAllSentinel(divisi) {
			all, err := c.DB.GetDistinctActiveDivisions(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to expand division sentinel: %w", err)
			}
			for _, d := range all {
				appendDivision(d)
			}
			continue
		}
		appendDivision(divisi)
	}

	if len(expanded) == 0 {
		return nil, fmt.Errorf("admission set for kegiatan %d would be empty", kegiatanID)
	}

	if err := c.DB.ReplaceAllowedDivisions(ctx, kegiatanID, expanded); err != nil {
		return nil, fmt.Errorf("failed to store admission set: %w", err)
	}
	c.DivisionLists.Delete(kegiatanID)

	return expanded, nil
}

func isAllSentinel(divisi string) bool {
	canonical := normalize.Canonical(divisi, normalize.FieldDivision)
	return canonical == normalize.Canonical(models.AllDivisionsSentinel, normalize.FieldDivision) ||
		canonical == "all" || canonical == "all divisions"
}
