// Package cache wraps Redis for JSON read-through caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// JSONCache stores JSON documents under a key prefix with a fixed TTL.
// A nil client turns every lookup into a loader call.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJSONCache instantiates the cache helper.
func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

// Fetch loads key into dest, populating it from loader on a miss. Redis
// failures degrade to calling loader.
func (c *JSONCache) Fetch(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("platform/cache: loader required")
	}
	if c != nil && c.client != nil {
		raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
				return nil
			}
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		_ = c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
	}
	return json.Unmarshal(raw, dest)
}
