package app

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"eventhour/internal/domain"
)

var postalCodeRE = regexp.MustCompile(`^\d{5}$`)

// Geocoder resolves free-text locations to coordinates: static postal-code table first,
// then the shared cache, then the external provider.
type Geocoder struct {
	provider domain.GeocodeProvider
	cache    domain.GeoCache
	postal   domain.PostalCodeLookup
	timeout  time.Duration
	flight   singleflight.Group
}

func NewGeocoder(p domain.GeocodeProvider, c domain.GeoCache, postal domain.PostalCodeLookup, timeout time.Duration) *Geocoder {
	return &Geocoder{provider: p, cache: c, postal: postal, timeout: timeout}
}

func geoCacheKey(location, country string) string {
	return strings.ToLower(strings.TrimSpace(location)) + "_" + country
}

// Geocode runs the general path: cache, then provider. Successful and "not found" outcomes
// are cached; transport failures are not.
func (g *Geocoder) Geocode(ctx context.Context, location, country string) domain.GeocodeResult {
	location = strings.TrimSpace(location)
	if location == "" {
		return domain.GeocodeResult{Error: domain.GeocodeErrNoLocation}
	}

	key := geoCacheKey(location, country)
	if r, ok := g.cache.Get(ctx, key); ok {
		return r
	}

	// concurrent misses for the same key share one provider call, detached from the
	// cancellation of whichever caller started it
	shared := context.WithoutCancel(ctx)
	v, _, _ := g.flight.Do(key, func() (any, error) {
		if r, ok := g.cache.Get(shared, key); ok {
			return r, nil
		}
		return g.lookup(shared, key, location, country), nil
	})
	return v.(domain.GeocodeResult)
}

func (g *Geocoder) lookup(ctx context.Context, key, location, country string) domain.GeocodeResult {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	matches, err := g.provider.Search(callCtx, location, country, 1)
	if err != nil {
		log.Warn().Err(err).
			Str("location", location).
			Str("country", country).
			Msg("geocode provider failed")
		return domain.GeocodeResult{Error: err.Error()}
	}

	var r domain.GeocodeResult
	if len(matches) == 0 {
		r = domain.GeocodeResult{Error: domain.GeocodeErrNotFound}
	} else {
		m := matches[0]
		r = domain.GeocodeResult{
			Coords:      &domain.Coords{Lat: m.Lat, Lon: m.Lon},
			DisplayName: m.DisplayName,
		}
	}
	g.cache.Set(ctx, key, r)
	return r
}

// GeocodeWithFallback is the search entry point: German postal codes resolve from the static
// table without touching the cache or the provider.
func (g *Geocoder) GeocodeWithFallback(ctx context.Context, location, country string) domain.GeocodeResult {
	trimmed := strings.TrimSpace(location)
	if g.postal != nil && country == "DE" && postalCodeRE.MatchString(trimmed) {
		if p, ok := g.postal.Lookup(trimmed, country); ok {
			c := p.Coords
			return domain.GeocodeResult{Coords: &c, DisplayName: strings.TrimSpace(p.PostalCode + " " + p.City)}
		}
	}
	return g.Geocode(ctx, location, country)
}
