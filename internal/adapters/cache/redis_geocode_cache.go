package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"walk-scheduler/internal/domain"
	"walk-scheduler/internal/ports"
)

const geocodeKeyPrefix = "geocode:"

// RedisGeocodeCache stores geocoding results in Redis with a TTL, so a
// stale address mapping ages out instead of living forever.
type RedisGeocodeCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.GeocodeCache = (*RedisGeocodeCache)(nil)

func NewRedisGeocodeCache(client *redis.Client, ttl time.Duration) *RedisGeocodeCache {
	return &RedisGeocodeCache{client: client, ttl: ttl}
}

func (c *RedisGeocodeCache) Get(ctx context.Context, address string) (domain.Location, bool, error) {
	raw, err := c.client.Get(ctx, geocodeKeyPrefix+address).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Location{}, false, nil
	}
	if err != nil {
		return domain.Location{}, false, fmt.Errorf("geocode cache get %q: %w", address, err)
	}

	var loc domain.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return domain.Location{}, false, fmt.Errorf("geocode cache get %q: decode entry: %w", address, err)
	}

	return loc, true, nil
}

func (c *RedisGeocodeCache) Put(ctx context.Context, address string, loc domain.Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("geocode cache put %q: encode entry: %w", address, err)
	}

	if err := c.client.Set(ctx, geocodeKeyPrefix+address, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("geocode cache put %q: %w", address, err)
	}

	return nil
}
