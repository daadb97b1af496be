// Package catalog turns a product snapshot into one page of browse results.
// Apply is pure: it never mutates its input and callers simply re-invoke it when a knob changes.
package catalog

import (
	"sort"
	"strings"

	"storefront-service/internal/domain"
)

// SortKey selects the ordering of browse results.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortNewest    SortKey = "newest"
)

// DefaultPageSize is used when a query leaves PageSize unset.
const DefaultPageSize = 12

// Query holds every browse knob. Zero values mean: no search, all categories,
// featured ordering, first page, default page size.
type Query struct {
	Search   string
	Category string
	Sort     SortKey
	Page     int
	PageSize int
}

// Result is one page of the filtered, sorted catalog.
type Result struct {
	Items      []domain.Product `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// Apply runs search, category filter, sort and pagination, in that order.
// Pages past the end come back empty with the real totals.
func Apply(products []domain.Product, q Query) Result {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	filtered := Filter(products, q.Search, q.Category)
	Sort(filtered, q.Sort)

	total := len(filtered)
	res := Result{
		Items:      []domain.Product{},
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: total / pageSize,
	}
	if total%pageSize != 0 {
		res.TotalPages++
	}

	// Bound the page before multiplying so huge values cannot overflow.
	if page-1 >= res.TotalPages {
		return res
	}
	start := (page - 1) * pageSize
	end := total
	if pageSize < total-start {
		end = start + pageSize
	}
	res.Items = filtered[start:end]
	return res
}

// Filter returns a fresh slice of the products matching search and category.
// Search is trimmed and case-insensitive; an empty search or the "all" category passes everything.
func Filter(products []domain.Product, search, category string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !p.Matches(needle) {
			continue
		}
		if category != "" && category != domain.CategoryAll && string(p.Category) != category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders products in place. The sort is stable, so ties keep their incoming order.
// Unknown keys sort as SortFeatured.
func Sort(products []domain.Product, key SortKey) {
	var less func(a, b domain.Product) bool
	switch key {
	case SortPriceLow:
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b domain.Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	default:
		less = func(a, b domain.Product) bool { return a.Featured && !b.Featured }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

// ParseSortKey maps a query string value to a SortKey, falling back to SortFeatured.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(s); k {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortNewest:
		return k
	default:
		return SortFeatured
	}
}
