package app

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"eventhour/internal/domain"
)

// missingDistance sorts experiences without coordinates after every located one.
const missingDistance = 999999.0

type SearchService struct {
	planner        *QueryPlanner
	geocoder       *Geocoder
	facets         *FacetAggregator
	defaultCountry string
}

func NewSearchService(p *QueryPlanner, g *Geocoder, f *FacetAggregator, defaultCountry string) *SearchService {
	if defaultCountry == "" {
		defaultCountry = "DE"
	}
	return &SearchService{planner: p, geocoder: g, facets: f, defaultCountry: defaultCountry}
}

// Search filters, sorts and paginates active experiences. When req.Location resolves, the
// whole filtered set is annotated with distances and, for relevance and distance sorting,
// reordered by proximity before the page is cut. Geocoding problems never fail the call.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	if req.Sort == "" {
		req.Sort = domain.SortRelevance
	}
	if req.Country == "" {
		req.Country = s.defaultCountry
	}
	if err := req.Validate(); err != nil {
		return domain.SearchResult{}, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var facets domain.Facets
	g.Go(func() error {
		facets = s.facets.AggregateOrEmpty(gctx, s.planner.Filter(req))
		return nil
	})

	res, err := s.candidates(gctx, req)
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return domain.SearchResult{}, err
	}

	res.Filters = facets
	res.Page = req.Page
	res.TotalPages = (res.Total + req.Limit - 1) / req.Limit
	return res, nil
}

func (s *SearchService) candidates(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	var loc *domain.SearchLocation
	if strings.TrimSpace(req.Location) != "" && s.geocoder != nil {
		if r := s.geocoder.GeocodeWithFallback(ctx, req.Location, req.Country); r.Resolved() {
			loc = &domain.SearchLocation{
				Query:       strings.TrimSpace(req.Location),
				Coords:      *r.Coords,
				DisplayName: r.DisplayName,
				RadiusKm:    req.RadiusKm,
			}
		}
	}

	if loc == nil {
		page, err := s.planner.Candidates(ctx, req, true)
		if err != nil {
			return domain.SearchResult{}, err
		}
		hits := make([]domain.ExperienceWithDistance, len(page.Items))
		for i, e := range page.Items {
			hits[i] = domain.ExperienceWithDistance{Experience: e, WithinRadius: true}
		}
		return domain.SearchResult{Experiences: hits, Total: page.Total}, nil
	}

	page, err := s.planner.Candidates(ctx, req, false)
	if err != nil {
		return domain.SearchResult{}, err
	}
	hits := annotateDistances(page.Items, loc.Coords, req.RadiusKm)
	if req.Sort == domain.SortRelevance || req.Sort == domain.SortDistance {
		sortByProximity(hits)
	}
	return domain.SearchResult{
		Experiences:    paginate(hits, (req.Page-1)*req.Limit, req.Limit),
		Total:          len(hits),
		SearchLocation: loc,
	}, nil
}

func annotateDistances(items []domain.Experience, center domain.Coords, radiusKm float64) []domain.ExperienceWithDistance {
	out := make([]domain.ExperienceWithDistance, len(items))
	for i, e := range items {
		out[i] = domain.ExperienceWithDistance{Experience: e, WithinRadius: true}
		c := e.Coords()
		if c == nil {
			continue
		}
		d := DistanceKm(center, *c)
		out[i].DistanceKm = &d
		out[i].WithinRadius = radiusKm <= 0 || d <= radiusKm
	}
	return out
}

// sortByProximity puts in-radius hits first, then orders by ascending distance. The sort is
// stable so the base order breaks ties.
func sortByProximity(hits []domain.ExperienceWithDistance) {
	dist := func(h domain.ExperienceWithDistance) float64 {
		if h.DistanceKm == nil {
			return missingDistance
		}
		return *h.DistanceKm
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].WithinRadius != hits[j].WithinRadius {
			return hits[i].WithinRadius
		}
		return dist(hits[i]) < dist(hits[j])
	})
}

func paginate(hits []domain.ExperienceWithDistance, offset, limit int) []domain.ExperienceWithDistance {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(hits) {
		return []domain.ExperienceWithDistance{}
	}
	end := offset + limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[offset:end]
}
