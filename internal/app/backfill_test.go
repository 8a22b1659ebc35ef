package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhour/internal/adapters/geocache"
	"eventhour/internal/app"
	"eventhour/internal/domain"
	"eventhour/internal/storage/memory"
)

func backfillRepo() *memory.Repo {
	return memory.New(nil, []domain.Experience{
		{ID: "b1", Street: "Invalidenstraße 1", PostalCode: "10115", City: "Berlin", IsActive: true},
		{ID: "b2", City: "Nirgendwo", IsActive: true},
		{ID: "b3", City: "Berlin", Lat: ptr(52.52), Lon: ptr(13.40), IsActive: true},
		{ID: "b4", PostalCode: "10115", IsActive: false},
		{ID: "b5", PostalCode: "80331", Country: "de", IsActive: true},
	})
}

func TestBackfill_NextBatchPagesByID(t *testing.T) {
	svc := app.NewBackfillService(backfillRepo(), nil, "DE")

	first, err := svc.NextBatch(context.Background(), "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, expIDs(first))

	next, err := svc.NextBatch(context.Background(), first[len(first)-1].ID, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b5"}, expIDs(next))
}

func TestBackfill_FallsBackToPostalCode(t *testing.T) {
	repo := backfillRepo()
	p := &fakeProvider{} // provider knows nothing
	g := app.NewGeocoder(p, geocache.NewMemory(), app.GermanPostalCodes(), time.Second)
	svc := app.NewBackfillService(repo, g, "DE")

	batch, err := svc.NextBatch(context.Background(), "", 10)
	require.NoError(t, err)

	results := map[string]bool{}
	for _, e := range batch {
		ok, err := svc.BackfillExperience(context.Background(), e)
		require.NoError(t, err)
		results[e.ID] = ok
	}
	assert.Equal(t, map[string]bool{"b1": true, "b2": false, "b5": true}, results)

	// b1's street address and b2's city; b2's repeated city lookup is a cache hit
	assert.EqualValues(t, 2, p.calls.Load())

	left, err := svc.NextBatch(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, expIDs(left))

	page, err := repo.FindExperiences(context.Background(), domain.ExperienceQuery{Filter: domain.ExperienceFilter{}})
	require.NoError(t, err)
	for _, e := range page.Items {
		if e.ID == "b1" {
			require.NotNil(t, e.Coords())
			assert.Equal(t, berlin10115, *e.Coords())
		}
	}
}

func TestBackfill_UsesProviderForFullAddress(t *testing.T) {
	p := &fakeProvider{matches: []domain.GeocodeMatch{{Lat: 52.5310, Lon: 13.3800, DisplayName: "Invalidenstraße 1, Berlin"}}}
	g := app.NewGeocoder(p, geocache.NewMemory(), app.GermanPostalCodes(), time.Second)
	svc := app.NewBackfillService(backfillRepo(), g, "DE")

	ok, err := svc.BackfillExperience(context.Background(), domain.Experience{
		ID: "b1", Street: "Invalidenstraße 1", PostalCode: "10115", City: "Berlin",
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1, p.calls.Load())
}

func TestBackfill_UnknownExperience(t *testing.T) {
	g := app.NewGeocoder(&fakeProvider{}, geocache.NewMemory(), app.GermanPostalCodes(), time.Second)
	svc := app.NewBackfillService(backfillRepo(), g, "DE")

	_, err := svc.BackfillExperience(context.Background(), domain.Experience{ID: "missing", PostalCode: "10115"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func expIDs(items []domain.Experience) []string {
	out := make([]string, len(items))
	for i, e := range items {
		out[i] = e.ID
	}
	return out
}
