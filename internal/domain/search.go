package domain

import (
	"fmt"
	"math"
	"strings"
)

type SortMode string

const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortRating    SortMode = "rating"
	SortNewest    SortMode = "newest"
	SortDistance  SortMode = "distance"
)

func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortNewest, SortDistance:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown sort mode %q", ErrInvalidRequest, s)
}

// SearchRequest is the core search input. Prices are in cents; the HTTP layer converts from euros.
type SearchRequest struct {
	Query       string
	CategoryIDs []string
	MinPrice    *int64
	MaxPrice    *int64
	Durations   []string
	MinRating   *float64 // 0-5 stars
	Location    string
	Country     string
	RadiusKm    float64 // 0 = nationwide
	PartnerID   string
	Sort        SortMode
	Page        int
	Limit       int
}

func (r SearchRequest) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidRequest)
	}
	if r.Limit < 1 {
		return fmt.Errorf("%w: limit must be >= 1", ErrInvalidRequest)
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return fmt.Errorf("%w: page out of range", ErrInvalidRequest)
	}
	if r.MinPrice != nil && r.MaxPrice != nil && *r.MinPrice > *r.MaxPrice {
		return fmt.Errorf("%w: minPrice must not exceed maxPrice", ErrInvalidRequest)
	}
	if r.RadiusKm < 0 {
		return fmt.Errorf("%w: radius must not be negative", ErrInvalidRequest)
	}
	if r.MinRating != nil && (*r.MinRating < 0 || *r.MinRating > 5) {
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidRequest)
	}
	for _, d := range r.Durations {
		if _, ok := LookupDurationBucket(d); !ok {
			return fmt.Errorf("%w: unknown duration %q", ErrInvalidRequest, d)
		}
	}
	return nil
}

type SearchResult struct {
	Experiences    []ExperienceWithDistance
	Total          int
	Page           int
	TotalPages     int
	Filters        Facets
	SearchLocation *SearchLocation
}

type SearchLocation struct {
	Query       string
	Coords      Coords
	DisplayName string
	RadiusKm    float64
}

type Facets struct {
	Categories []CategoryFacet
	PriceRange PriceRange
	Durations  []DurationFacet
}

type CategoryFacet struct {
	ID    string
	Name  string
	Count int
}

// PriceRange bounds are in cents.
type PriceRange struct {
	Min int64
	Max int64
}

type DurationFacet struct {
	Value string
	Label string
	Count int
}
