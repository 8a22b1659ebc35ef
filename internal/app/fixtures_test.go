package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"eventhour/internal/adapters/geocache"
	"eventhour/internal/app"
	"eventhour/internal/domain"
	"eventhour/internal/storage/memory"
)

// ---- fakes ----

type fakeProvider struct {
	matches []domain.GeocodeMatch
	err     error
	delay   time.Duration

	calls       atomic.Int32
	hadDeadline atomic.Bool
}

func (p *fakeProvider) Search(ctx context.Context, query, country string, limit int) ([]domain.GeocodeMatch, error) {
	p.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		p.hadDeadline.Store(true)
	}
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.matches, p.err
}

// fakeCache stores JSON like the redis adapter does.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	ttls  map[string]int
	gets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
		c.ttls = map[string]int{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	c.ttls[key] = ttlSec
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// failingRepo wraps a working repo and fails selected operations.
type failingRepo struct {
	domain.ExperienceRepository
	failFind   bool
	failFacets bool
}

var errStoreDown = errors.New("store unavailable")

func (r *failingRepo) FindExperiences(ctx context.Context, q domain.ExperienceQuery) (domain.ExperiencePage, error) {
	if r.failFind {
		return domain.ExperiencePage{}, errStoreDown
	}
	return r.ExperienceRepository.FindExperiences(ctx, q)
}

func (r *failingRepo) CategoryCounts(ctx context.Context, f domain.ExperienceFilter) ([]domain.CategoryFacet, error) {
	if r.failFacets {
		return nil, errStoreDown
	}
	return r.ExperienceRepository.CategoryCounts(ctx, f)
}

// ---- fixtures ----

func ptr[T any](v T) *T { return &v }

var (
	berlin10115 = domain.Coords{Lat: 52.5340, Lon: 13.3850}
	baseTime    = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
)

func fixtureCategories() []domain.Category {
	return []domain.Category{
		{ID: "cat-flight", Name: "Fliegen", Slug: "fliegen"},
		{ID: "cat-adventure", Name: "Abenteuer", Slug: "abenteuer"},
		{ID: "cat-culinary", Name: "Kulinarik", Slug: "kulinarik"},
		{ID: "cat-motor", Name: "Motorsport", Slug: "motorsport"},
		{ID: "cat-wellness", Name: "Wellness", Slug: "wellness"},
	}
}

func exp(id, title, cat string, cents int64, minutes, pop int, lat, lon *float64) domain.Experience {
	return domain.Experience{
		ID:              id,
		Slug:            id,
		Title:           title,
		Description:     title + " als Geschenk.",
		Country:         "DE",
		Lat:             lat,
		Lon:             lon,
		RetailPrice:     cents,
		Duration:        minutes,
		CategoryID:      cat,
		PartnerID:       "partner-1",
		PopularityScore: pop,
		IsActive:        true,
	}
}

// fixtureExperiences: e1 and e7 lie within 10 km of 10115 Berlin, e5 has no coordinates and e6 is inactive.
func fixtureExperiences() []domain.Experience {
	items := []domain.Experience{
		exp("e1", "Flugsimulator Boeing 737", "cat-flight", 14900, 90, 90, ptr(52.5200), ptr(13.4050)),
		exp("e2", "Flugsimulator Airbus A320", "cat-flight", 19900, 120, 70, ptr(52.3906), ptr(13.0645)),
		exp("e3", "Fallschirmsprung Tandem", "cat-adventure", 24900, 240, 95, ptr(48.1374), ptr(11.5755)),
		exp("e4", "Kochkurs Italienisch", "cat-culinary", 8900, 180, 60, ptr(53.5511), ptr(9.9937)),
		exp("e5", "Fahrsicherheitstraining", "cat-motor", 6900, 480, 50, nil, nil),
		exp("e6", "Inaktiver Flugsimulator", "cat-flight", 5000, 60, 99, ptr(52.5200), ptr(13.4050)),
		exp("e7", "Wellness Wochenende", "cat-wellness", 29900, 2880, 85, ptr(52.5000), ptr(13.4000)),
		exp("e8", "Fallschirmsprung Tandem", "cat-adventure", 26900, 240, 40, ptr(50.9375), ptr(6.9603)),
	}
	items[5].IsActive = false
	items[3].SearchKeywords = "pasta, kulinarisch"
	items[7].PartnerID = "partner-2"
	for i := range items {
		items[i].CreatedAt = baseTime.Add(time.Duration(i) * time.Hour)
	}
	return items
}

func newFixtureRepo() *memory.Repo {
	return memory.New(fixtureCategories(), fixtureExperiences())
}

type stack struct {
	repo     domain.ExperienceRepository
	provider *fakeProvider
	geocoder *app.Geocoder
	search   *app.SearchService
}

func newStack(repo domain.ExperienceRepository, provider *fakeProvider) stack {
	if provider == nil {
		provider = &fakeProvider{}
	}
	g := app.NewGeocoder(provider, geocache.NewMemory(), app.GermanPostalCodes(), time.Second)
	s := app.NewSearchService(app.NewQueryPlanner(repo), g, app.NewFacetAggregator(repo), "DE")
	return stack{repo: repo, provider: provider, geocoder: g, search: s}
}

func hitIDs(hits []domain.ExperienceWithDistance) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}
