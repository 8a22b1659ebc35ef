package app

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"eventhour/internal/domain"
)

// FacetAggregator computes filter-option counts. Each dimension is counted against the
// current filter minus that dimension. It never affects which experiences are returned.
type FacetAggregator struct {
	repo domain.ExperienceRepository
}

func NewFacetAggregator(r domain.ExperienceRepository) *FacetAggregator {
	return &FacetAggregator{repo: r}
}

func (a *FacetAggregator) Aggregate(ctx context.Context, f domain.ExperienceFilter) (domain.Facets, error) {
	var (
		cats      []domain.CategoryFacet
		durCounts map[string]int
		price     domain.PriceRange
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = a.repo.CategoryCounts(gctx, f.WithoutCategories())
		return err
	})
	g.Go(func() error {
		var err error
		durCounts, err = a.repo.DurationCounts(gctx, f.WithoutDurations(), domain.DurationBuckets)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = a.repo.PriceRange(gctx, f.WithoutPrice())
		return err
	})
	if err := g.Wait(); err != nil {
		return EmptyFacets(), domain.NewQueryError("aggregate facets", err)
	}

	out := domain.Facets{Categories: cats, PriceRange: price}
	for _, b := range domain.DurationBuckets {
		out.Durations = append(out.Durations, domain.DurationFacet{Value: b.Value, Label: b.Label, Count: durCounts[b.Value]})
	}
	if out.Categories == nil {
		out.Categories = []domain.CategoryFacet{}
	}
	return out, nil
}

// AggregateOrEmpty degrades to EmptyFacets when the store cannot aggregate.
func (a *FacetAggregator) AggregateOrEmpty(ctx context.Context, f domain.ExperienceFilter) domain.Facets {
	out, err := a.Aggregate(ctx, f)
	if err != nil {
		log.Error().Err(err).Msg("facet aggregation failed")
	}
	return out
}

// EmptyFacets keeps the facet shape with zero counts.
func EmptyFacets() domain.Facets {
	out := domain.Facets{Categories: []domain.CategoryFacet{}}
	for _, b := range domain.DurationBuckets {
		out.Durations = append(out.Durations, domain.DurationFacet{Value: b.Value, Label: b.Label})
	}
	return out
}
