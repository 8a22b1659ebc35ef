package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "eventhour/internal/adapters/redis"
	"eventhour/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetWithTTL(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, "suggest:10:flug", []string{"Flugsimulator"}, 300))

	var got []string
	ok, err := c.Get(ctx, "suggest:10:flug", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Flugsimulator"}, got)
	assert.Equal(t, 300*time.Second, mr.TTL("suggest:10:flug"))

	mr.FastForward(301 * time.Second)
	ok, err = c.Get(ctx, "suggest:10:flug", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_MissAndDelete(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var v map[string]int
	ok, err := c.Get(ctx, "absent", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, 0))
	require.NoError(t, c.Del(ctx, "k"))
	ok, err = c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGeoCache_NoExpiry(t *testing.T) {
	c, mr := newCache(t)
	g := redisad.NewGeoCache(c)
	ctx := context.Background()

	want := domain.GeocodeResult{Coords: &domain.Coords{Lat: 53.55, Lon: 9.99}, DisplayName: "Hamburg"}
	g.Set(ctx, "hamburg_DE", want)
	g.Set(ctx, "atlantis_DE", domain.GeocodeResult{Error: domain.GeocodeErrNotFound})

	assert.True(t, mr.Exists("geo:v1:hamburg_DE"))
	assert.Zero(t, mr.TTL("geo:v1:hamburg_DE"))

	mr.FastForward(365 * 24 * time.Hour)

	got, ok := g.Get(ctx, "hamburg_DE")
	require.True(t, ok)
	assert.Equal(t, want, got)

	nf, ok := g.Get(ctx, "atlantis_DE")
	require.True(t, ok)
	assert.False(t, nf.Resolved())
	assert.Equal(t, domain.GeocodeErrNotFound, nf.Error)
}

func TestGeoCache_RedisDownIsAMiss(t *testing.T) {
	c, mr := newCache(t)
	g := redisad.NewGeoCache(c)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	g.Set(ctx, "hamburg_DE", domain.GeocodeResult{DisplayName: "Hamburg"})
	_, ok := g.Get(ctx, "hamburg_DE")
	assert.False(t, ok)
}
