package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhour/internal/domain"
)

func i64(v int64) *int64 { return &v }
func f64(v float64) *float64 { return &v }

func sample() domain.Experience {
	return domain.Experience{
		ID:               "exp-1",
		Title:            "Flugsimulator Boeing 737",
		Description:      "Einmal selbst im Cockpit sitzen.",
		ShortDescription: "Cockpit-Erlebnis",
		SearchKeywords:   "pilot, fliegen",
		RetailPrice:      14900,
		Duration:         90,
		CategoryID:       "cat-flight",
		PartnerID:        "partner-1",
		PopularityScore:  80,
		IsActive:         true,
	}
}

func TestFilterMatches(t *testing.T) {
	e := sample()
	short, _ := domain.LookupDurationBucket("short")
	long, _ := domain.LookupDurationBucket("long")

	cases := []struct {
		name string
		f    domain.ExperienceFilter
		want bool
	}{
		{"empty filter", domain.ExperienceFilter{}, true},
		{"title case-insensitive", domain.ExperienceFilter{Query: "FLUGSIMULATOR"}, true},
		{"keywords", domain.ExperienceFilter{Query: "pilot"}, true},
		{"short description", domain.ExperienceFilter{Query: "cockpit-erlebnis"}, true},
		{"no text match", domain.ExperienceFilter{Query: "kochkurs"}, false},
		{"category hit", domain.ExperienceFilter{CategoryIDs: []string{"x", "cat-flight"}}, true},
		{"category miss", domain.ExperienceFilter{CategoryIDs: []string{"x"}}, false},
		{"min price inclusive", domain.ExperienceFilter{MinPrice: i64(14900)}, true},
		{"min price above", domain.ExperienceFilter{MinPrice: i64(15000)}, false},
		{"max price inclusive", domain.ExperienceFilter{MaxPrice: i64(14900)}, true},
		{"max price below", domain.ExperienceFilter{MaxPrice: i64(10000)}, false},
		{"duration bucket", domain.ExperienceFilter{Durations: []domain.DurationBucket{short}}, true},
		{"duration any of", domain.ExperienceFilter{Durations: []domain.DurationBucket{long, short}}, true},
		{"duration miss", domain.ExperienceFilter{Durations: []domain.DurationBucket{long}}, false},
		{"popularity met", domain.ExperienceFilter{MinPopularity: f64(80)}, true},
		{"popularity not met", domain.ExperienceFilter{MinPopularity: f64(80.5)}, false},
		{"partner hit", domain.ExperienceFilter{PartnerID: "partner-1"}, true},
		{"partner miss", domain.ExperienceFilter{PartnerID: "partner-2"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.f.Matches(e))
		})
	}
}

func TestFilterMatches_InactiveNeverMatches(t *testing.T) {
	e := sample()
	e.IsActive = false
	assert.False(t, domain.ExperienceFilter{}.Matches(e))
	assert.False(t, domain.ExperienceFilter{Query: "flug"}.Matches(e))
}

func TestFacetContextsDropOneDimension(t *testing.T) {
	short, _ := domain.LookupDurationBucket("short")
	f := domain.ExperienceFilter{
		Query:       "flug",
		CategoryIDs: []string{"a"},
		MinPrice:    i64(1),
		MaxPrice:    i64(2),
		Durations:   []domain.DurationBucket{short},
	}

	nc := f.WithoutCategories()
	assert.Nil(t, nc.CategoryIDs)
	assert.Equal(t, "flug", nc.Query)
	assert.NotNil(t, nc.MinPrice)

	np := f.WithoutPrice()
	assert.Nil(t, np.MinPrice)
	assert.Nil(t, np.MaxPrice)
	assert.Len(t, np.Durations, 1)

	nd := f.WithoutDurations()
	assert.Nil(t, nd.Durations)
	assert.Equal(t, []string{"a"}, nd.CategoryIDs)

	// the original is untouched
	assert.Len(t, f.CategoryIDs, 1)
	assert.Len(t, f.Durations, 1)
}

func TestDurationBuckets(t *testing.T) {
	cases := map[string][]int{
		"short":     {0, 60, 120},
		"medium":    {120, 240, 360},
		"long":      {360, 600, 1440},
		"multi_day": {1440, 2880, 100000},
	}
	for value, inside := range cases {
		b, ok := domain.LookupDurationBucket(value)
		require.True(t, ok, value)
		for _, m := range inside {
			assert.True(t, b.Contains(m), "%s should contain %d", value, m)
		}
	}

	short, _ := domain.LookupDurationBucket("short")
	assert.False(t, short.Contains(121))
	medium, _ := domain.LookupDurationBucket("medium")
	assert.False(t, medium.Contains(119))

	_, ok := domain.LookupDurationBucket("weekend")
	assert.False(t, ok)
}

func TestOrderFor(t *testing.T) {
	idAsc := domain.OrderTerm{Field: domain.OrderID}

	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderPopularity, Desc: true}, idAsc},
		domain.OrderFor(domain.SortRelevance, true))
	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderCreatedAt, Desc: true}, idAsc},
		domain.OrderFor(domain.SortRelevance, false))
	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderRetailPrice}, idAsc},
		domain.OrderFor(domain.SortPriceAsc, true))
	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderRetailPrice, Desc: true}, idAsc},
		domain.OrderFor(domain.SortPriceDesc, false))
	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderCreatedAt, Desc: true}, idAsc},
		domain.OrderFor(domain.SortNewest, true))
	assert.Equal(t, []domain.OrderTerm{{Field: domain.OrderPopularity, Desc: true}, idAsc},
		domain.OrderFor(domain.SortRating, false))
	assert.Equal(t, domain.OrderFor(domain.SortRelevance, true), domain.OrderFor(domain.SortDistance, true))
}

func TestSortExperiences_TiesBreakOnID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []domain.Experience{
		{ID: "c", RetailPrice: 5000, CreatedAt: now},
		{ID: "a", RetailPrice: 5000, CreatedAt: now},
		{ID: "b", RetailPrice: 1000, CreatedAt: now.Add(time.Hour)},
	}

	domain.SortExperiences(items, domain.OrderFor(domain.SortPriceAsc, false))
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))

	domain.SortExperiences(items, domain.OrderFor(domain.SortNewest, false))
	assert.Equal(t, []string{"b", "a", "c"}, ids(items))

	domain.SortExperiences(items, domain.OrderFor(domain.SortPriceDesc, false))
	assert.Equal(t, []string{"a", "c", "b"}, ids(items))
}

func ids(items []domain.Experience) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}

func TestParseSortMode(t *testing.T) {
	m, err := domain.ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, domain.SortRelevance, m)

	m, err = domain.ParseSortMode(" Price_Asc ")
	require.NoError(t, err)
	assert.Equal(t, domain.SortPriceAsc, m)

	_, err = domain.ParseSortMode("cheapest")
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestSearchRequestValidate(t *testing.T) {
	valid := domain.SearchRequest{Page: 1, Limit: 12}
	require.NoError(t, valid.Validate())
	require.NoError(t, domain.SearchRequest{Page: 10000, Limit: 100}.Validate())

	bad := map[string]domain.SearchRequest{
		"page zero":        {Page: 0, Limit: 12},
		"limit zero":       {Page: 1, Limit: 0},
		"inverted price":   {Page: 1, Limit: 12, MinPrice: i64(10000), MaxPrice: i64(5000)},
		"negative radius":  {Page: 1, Limit: 12, RadiusKm: -1},
		"rating too high":  {Page: 1, Limit: 12, MinRating: f64(5.5)},
		"unknown duration": {Page: 1, Limit: 12, Durations: []string{"weekend"}},
		"offset overflow":  {Page: 1e18, Limit: 12},
	}
	for name, req := range bad {
		err := req.Validate()
		assert.True(t, errors.Is(err, domain.ErrInvalidRequest), name)
	}
}

func TestExperienceCoords(t *testing.T) {
	e := sample()
	assert.Nil(t, e.Coords())

	lat := 52.5
	e.Lat = &lat
	assert.Nil(t, e.Coords(), "lat without lon")

	lon := 13.4
	e.Lon = &lon
	require.NotNil(t, e.Coords())
	assert.Equal(t, domain.Coords{Lat: 52.5, Lon: 13.4}, *e.Coords())
}

func TestQueryErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.NewQueryError("find experiences", cause)

	var qe *domain.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "find experiences", qe.Op)
	assert.ErrorIs(t, err, cause)

	// already wrapped errors are not wrapped twice
	again := domain.NewQueryError("outer", err)
	require.ErrorAs(t, again, &qe)
	assert.Equal(t, "find experiences", qe.Op)
}
