package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/herbal-remedy-api/internal/domain"
)

// CatalogStore returns catalog documents that may carry the given use tag, in catalog order.
// Implementations may over-match (e.g. substring matches); Rank re-checks every predicate.
type CatalogStore interface {
	FindByUse(ctx context.Context, use string) ([]domain.CatalogDocument, error)
}

// Engine ranks catalog remedies for a condition tag.
type Engine struct {
	catalog CatalogStore
}

func NewEngine(catalog CatalogStore) *Engine {
	return &Engine{catalog: catalog}
}

// Rank returns up to limit safe remedies for condition, best first. A limit <= 0 means
// domain.DefaultRankLimit. No match is an empty, non-nil slice.
func (e *Engine) Rank(ctx context.Context, condition string, preferEdible bool, limit int) ([]domain.PlantInfo, error) {
	docs, err := e.catalog.FindByUse(ctx, condition)
	if err != nil {
		return nil, fmt.Errorf("query catalog for %q: %w", condition, err)
	}
	records := make([]domain.RemedyRecord, len(docs))
	for i, d := range docs {
		records[i] = Decode(d)
	}
	selected := Select(records, condition, preferEdible, limit)
	out := make([]domain.PlantInfo, len(selected))
	for i, r := range selected {
		out[i] = r.Project()
	}
	return out, nil
}

// Select applies the eligibility filter, the two-key descending sort and truncation.
// Records with equal keys keep their input order.
func Select(records []domain.RemedyRecord, condition string, preferEdible bool, limit int) []domain.RemedyRecord {
	if limit <= 0 {
		limit = domain.DefaultRankLimit
	}
	eligible := make([]domain.RemedyRecord, 0, len(records))
	for _, r := range records {
		if Eligible(r, condition) {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		pi, si := keys(eligible[i], preferEdible)
		pj, sj := keys(eligible[j], preferEdible)
		if pi != pj {
			return pi > pj
		}
		return si > sj
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

// Eligible reports whether r carries the use tag and has no known hazard.
func Eligible(r domain.RemedyRecord, condition string) bool {
	return SafeHazard(r.Hazards) && hasUse(r.Uses, condition)
}

// SafeHazard reports whether a hazard field equals the "none known" sentinel.
func SafeHazard(h string) bool {
	return strings.EqualFold(strings.TrimSpace(h), domain.HazardNone)
}

func hasUse(uses []string, condition string) bool {
	want := strings.TrimSpace(condition)
	for _, u := range uses {
		if strings.EqualFold(strings.TrimSpace(u), want) {
			return true
		}
	}
	return false
}

func keys(r domain.RemedyRecord, preferEdible bool) (primary, secondary int) {
	if preferEdible {
		return r.EdibilityRating, r.MedicinalRating
	}
	return r.MedicinalRating, r.EdibilityRating
}
