// Package search filters and ranks donation candidates by text, category and distance.
package search

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/foodlink/foodlink-api/internal/geo"
	"github.com/foodlink/foodlink-api/internal/model"
)

// Query validation errors.
var (
	ErrRadiusWithoutOrigin = errors.New("radius requires latitude and longitude")
	ErrInvalidRadius       = errors.New("radius must be a non-negative number")
	ErrInvalidOrigin       = errors.New("origin coordinates out of range")
)

// ValidateQuery rejects malformed queries. Search itself never fails.
func ValidateQuery(q model.Query) error {
	if q.RadiusKm != nil {
		if q.Origin == nil {
			return ErrRadiusWithoutOrigin
		}
		r := *q.RadiusKm
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return ErrInvalidRadius
		}
	}
	if q.Origin != nil && geo.Validate(*q.Origin) != nil {
		return ErrInvalidOrigin
	}
	return nil
}

// BoundingBox returns the store-side pre-filter for q, or nil when no radius is active.
func BoundingBox(q model.Query) *geo.BoundingBox {
	if !q.HasRadius() {
		return nil
	}
	box := geo.NewBoundingBox(*q.Origin, *q.RadiusKm)
	return &box
}

// Search returns the candidates matching q. With an origin the result is ordered nearest first
// (stable, unlocated donations last); without one, input order is kept. A query with no active
// filter matches nothing.
func Search(candidates []model.Donation, q model.Query) []model.Donation {
	result := make([]model.Donation, 0)

	text := strings.ToLower(strings.TrimSpace(q.SearchText))
	normText := model.NormalizeCategory(q.SearchText)
	categories := categorySet(q.Categories)

	if len(candidates) == 0 || !Active(q) {
		return result
	}

	for _, d := range candidates {
		if text != "" && !strings.Contains(strings.ToLower(d.ProductName), text) &&
			model.NormalizeCategory(d.Category) != normText {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[model.NormalizeCategory(d.Category)]; !ok {
				continue
			}
		}

		if q.Origin != nil {
			d.DistanceKm = nil
			loc, located := d.Location()
			if located {
				dist := geo.Distance(*q.Origin, loc)
				if math.IsNaN(dist) {
					located = false
				} else {
					d.DistanceKm = &dist
				}
			}
			if q.RadiusKm != nil && (!located || *d.DistanceKm > *q.RadiusKm) {
				continue
			}
		}

		result = append(result, d)
	}

	if q.Origin != nil {
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i].DistanceKm, result[j].DistanceKm
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return *a < *b
		})
	}

	return result
}

// Active reports whether q has at least one filter. An origin alone counts since it orders by distance.
func Active(q model.Query) bool {
	return strings.TrimSpace(q.SearchText) != "" || len(categorySet(q.Categories)) > 0 || q.Origin != nil
}

func categorySet(categories []string) map[string]struct{} {
	set := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if n := model.NormalizeCategory(c); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
