package app

import (
	"context"
	"fmt"
	"strings"

	"eventhour/internal/domain"
)

// BackfillService stores coordinates for experiences created without them so they take
// part in radius search.
type BackfillService struct {
	repo     domain.ExperienceRepository
	geocoder *Geocoder
	country  string
}

func NewBackfillService(r domain.ExperienceRepository, g *Geocoder, defaultCountry string) *BackfillService {
	if defaultCountry == "" {
		defaultCountry = "DE"
	}
	return &BackfillService{repo: r, geocoder: g, country: defaultCountry}
}

// NextBatch returns up to limit experiences without coordinates, ordered by id after afterID.
func (s *BackfillService) NextBatch(ctx context.Context, afterID string, limit int) ([]domain.Experience, error) {
	items, err := s.repo.ListMissingCoordinates(ctx, afterID, limit)
	if err != nil {
		return nil, domain.NewQueryError("list missing coordinates", err)
	}
	return items, nil
}

// BackfillExperience geocodes the full address first, then the bare postal code.
// It reports false when neither resolves.
func (s *BackfillService) BackfillExperience(ctx context.Context, e domain.Experience) (bool, error) {
	country := strings.ToUpper(strings.TrimSpace(e.Country))
	if country == "" {
		country = s.country
	}

	candidates := []string{joinNonEmpty(e.Street, e.PostalCode, e.City)}
	if strings.TrimSpace(e.PostalCode) != "" {
		candidates = append(candidates, e.PostalCode)
	}
	if strings.TrimSpace(e.City) != "" {
		candidates = append(candidates, e.City)
	}

	for _, loc := range candidates {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		r := s.geocoder.GeocodeWithFallback(ctx, loc, country)
		if !r.Resolved() {
			continue
		}
		if err := s.repo.UpdateCoordinates(ctx, e.ID, *r.Coords); err != nil {
			return false, fmt.Errorf("update coordinates for %s: %w", e.ID, err)
		}
		return true, nil
	}
	return false, nil
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}
