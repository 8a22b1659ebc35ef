package domain

import "context"

type ExperienceRepository interface {
	// Search paths
	FindExperiences(ctx context.Context, q ExperienceQuery) (ExperiencePage, error)
	CategoryCounts(ctx context.Context, f ExperienceFilter) ([]CategoryFacet, error)
	DurationCounts(ctx context.Context, f ExperienceFilter, buckets []DurationBucket) (map[string]int, error)
	PriceRange(ctx context.Context, f ExperienceFilter) (PriceRange, error)
	SuggestTitles(ctx context.Context, q string, limit int) ([]string, error)

	// Backfill paths
	ListMissingCoordinates(ctx context.Context, afterID string, limit int) ([]Experience, error)
	UpdateCoordinates(ctx context.Context, id string, c Coords) error
}

// GeocodeProvider is the external geocoding service. An empty slice means "not found".
type GeocodeProvider interface {
	Search(ctx context.Context, query, countryCode string, limit int) ([]GeocodeMatch, error)
}

// GeoCache memoises geocode results for the lifetime of the process. Entries never expire.
type GeoCache interface {
	Get(ctx context.Context, key string) (GeocodeResult, bool)
	Set(ctx context.Context, key string, r GeocodeResult)
}

type PostalCodeLookup interface {
	Lookup(postalCode, country string) (PostalPlace, bool)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
