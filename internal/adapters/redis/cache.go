package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"eventhour/internal/adapters/observability"
	"eventhour/internal/domain"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

// Set stores v as JSON. ttlSec <= 0 keeps the key without expiry.
func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache("redis", "set")
	var ttl time.Duration
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	return r.c.Set(ctx, key, b, ttl).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}

const geoKeyPrefix = "geo:v1:"

// GeoCache shares geocode results between API replicas. Keys carry no expiry; read or
// write failures fall back to a miss so search keeps working while Redis is down.
type GeoCache struct{ c *Cache }

func NewGeoCache(c *Cache) *GeoCache { return &GeoCache{c: c} }

func (g *GeoCache) Get(ctx context.Context, key string) (domain.GeocodeResult, bool) {
	var r domain.GeocodeResult
	ok, err := g.c.Get(ctx, geoKeyPrefix+key, &r)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache read failed")
		return domain.GeocodeResult{}, false
	}
	return r, ok
}

func (g *GeoCache) Set(ctx context.Context, key string, r domain.GeocodeResult) {
	if err := g.c.Set(ctx, geoKeyPrefix+key, r, 0); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("geocode cache write failed")
	}
}
