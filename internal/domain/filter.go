package domain

import (
	"sort"
	"strings"
)

// ExperienceFilter is the store-level filter. Only active experiences ever match.
type ExperienceFilter struct {
	Query         string // matched case-insensitively as a substring
	CategoryIDs   []string
	MinPrice      *int64 // cents, inclusive
	MaxPrice      *int64 // cents, inclusive
	Durations     []DurationBucket
	MinPopularity *float64
	PartnerID     string
}

func (f ExperienceFilter) HasText() bool { return strings.TrimSpace(f.Query) != "" }

// Facet contexts drop the dimension being aggregated.
func (f ExperienceFilter) WithoutCategories() ExperienceFilter { f.CategoryIDs = nil; return f }
func (f ExperienceFilter) WithoutPrice() ExperienceFilter {
	f.MinPrice, f.MaxPrice = nil, nil
	return f
}
func (f ExperienceFilter) WithoutDurations() ExperienceFilter { f.Durations = nil; return f }

func (f ExperienceFilter) Matches(e Experience) bool {
	if !e.IsActive {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !containsFold(e.Title, q) && !containsFold(e.Description, q) &&
			!containsFold(e.ShortDescription, q) && !containsFold(e.SearchKeywords, q) {
			return false
		}
	}
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, e.CategoryID) {
		return false
	}
	if f.MinPrice != nil && e.RetailPrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && e.RetailPrice > *f.MaxPrice {
		return false
	}
	if len(f.Durations) > 0 {
		ok := false
		for _, b := range f.Durations {
			if b.Contains(e.Duration) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.MinPopularity != nil && float64(e.PopularityScore) < *f.MinPopularity {
		return false
	}
	if f.PartnerID != "" && e.PartnerID != f.PartnerID {
		return false
	}
	return true
}

func containsFold(s, lowerSub string) bool { return strings.Contains(strings.ToLower(s), lowerSub) }

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// ExperienceQuery is a planned store query. Limit 0 means no pagination.
type ExperienceQuery struct {
	Filter ExperienceFilter
	Sort   SortMode
	Offset int
	Limit  int
}

type ExperiencePage struct {
	Items []Experience
	Total int // filtered cardinality before pagination
}

type OrderField string

const (
	OrderRetailPrice OrderField = "retail_price"
	OrderCreatedAt   OrderField = "created_at"
	OrderPopularity  OrderField = "popularity_score"
	OrderID          OrderField = "id"
)

type OrderTerm struct {
	Field OrderField
	Desc  bool
}

// OrderFor returns the base ordering for a sort mode. Every ordering ends with id ascending
// so pages are stable.
func OrderFor(mode SortMode, hasText bool) []OrderTerm {
	var terms []OrderTerm
	switch mode {
	case SortPriceAsc:
		terms = []OrderTerm{{Field: OrderRetailPrice}}
	case SortPriceDesc:
		terms = []OrderTerm{{Field: OrderRetailPrice, Desc: true}}
	case SortNewest:
		terms = []OrderTerm{{Field: OrderCreatedAt, Desc: true}}
	case SortRating:
		terms = []OrderTerm{{Field: OrderPopularity, Desc: true}}
	default:
		// relevance and distance share the base order; popularity stands in for text rank
		if hasText {
			terms = []OrderTerm{{Field: OrderPopularity, Desc: true}}
		} else {
			terms = []OrderTerm{{Field: OrderCreatedAt, Desc: true}}
		}
	}
	return append(terms, OrderTerm{Field: OrderID})
}

// SortExperiences orders items in place by terms.
func SortExperiences(items []Experience, terms []OrderTerm) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		for _, t := range terms {
			c := compareField(a, b, t.Field)
			if c == 0 {
				continue
			}
			if t.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareField(a, b Experience, f OrderField) int {
	switch f {
	case OrderRetailPrice:
		return cmpInt64(a.RetailPrice, b.RetailPrice)
	case OrderCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case OrderPopularity:
		return cmpInt64(int64(a.PopularityScore), int64(b.PopularityScore))
	case OrderID:
		return strings.Compare(a.ID, b.ID)
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
