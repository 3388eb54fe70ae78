package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/toko-storefront/internal/obs"
)

// Cache keeps upstream catalog documents in Redis.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a cache helper. A nil client or non-positive TTL
// disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached document for key. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if !c.enabled() || key == "" {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			obs.ObserveCatalogCache("miss")
			return nil, false, nil
		}
		obs.ObserveCatalogCache("error")
		return nil, false, err
	}
	if !json.Valid(data) {
		obs.ObserveCatalogCache("corrupt")
		_ = c.client.Del(ctx, key).Err()
		return nil, false, nil
	}
	obs.ObserveCatalogCache("hit")
	return json.RawMessage(data), true, nil
}

// Set stores doc under key with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, doc json.RawMessage) error {
	if !c.enabled() || key == "" {
		return nil
	}
	return c.client.Set(ctx, key, []byte(doc), c.ttl).Err()
}
