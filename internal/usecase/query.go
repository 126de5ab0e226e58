package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/V4T54L/lead-intake/internal/domain"
)

// FilterLeads sorts, filters and paginates a snapshot of the collection.
// The snapshot slice is left untouched.
//
// Records are ordered by UpdatedAt descending before filtering so page
// offsets follow recency; ties keep storage order. Search matches the full
// name, email or country case-insensitively; Status matches exactly.
// Pages outside [1, TotalPages] yield an empty item list.
func FilterLeads(records []domain.Lead, params domain.ListParams) (domain.LeadPage, error) {
	if params.Limit <= 0 {
		return domain.LeadPage{}, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidFilterArgs, params.Limit)
	}

	sorted := make([]domain.Lead, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	search := strings.ToLower(params.Search)
	filtered := sorted[:0]
	for _, l := range sorted {
		if search != "" && !matchesSearch(l, search) {
			continue
		}
		if params.Status != "" && string(l.Status) != params.Status {
			continue
		}
		filtered = append(filtered, l)
	}

	total := len(filtered)
	totalPages := total / params.Limit
	if total%params.Limit != 0 {
		totalPages++
	}
	page := domain.LeadPage{
		Items:      []domain.Lead{},
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: totalPages,
	}

	// Page is bounded by totalPages before any offset is computed.
	if params.Page < 1 || params.Page > totalPages {
		return page, nil
	}
	start := (params.Page - 1) * params.Limit
	end := total
	if total-start > params.Limit {
		end = start + params.Limit
	}
	page.Items = domain.CloneLeads(filtered[start:end])
	return page, nil
}

// matchesSearch expects needle to be lower-cased already.
func matchesSearch(l domain.Lead, needle string) bool {
	return strings.Contains(strings.ToLower(l.FullName()), needle) ||
		strings.Contains(strings.ToLower(l.Email), needle) ||
		strings.Contains(strings.ToLower(l.CountryOfCitizenship), needle)
}
