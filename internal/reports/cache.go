package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache memoises rendered reports in Redis for a short TTL. Reports stay
// correct without it; it only shaves repeated aggregation scans. Concurrent
// misses for the same key collapse into one computation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache constructs a Cache. A nil client disables caching and every Fetch
// computes directly.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Fetch unmarshals the cached value for key into dest, or computes, stores,
// and returns it on a miss. Redis failures degrade to computing directly.
func (c *Cache) Fetch(ctx context.Context, key string, dest any, compute func() (any, error)) error {
	if c == nil || c.client == nil {
		value, err := compute()
		if err != nil {
			return err
		}
		return reencode(value, dest)
	}

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		return json.Unmarshal(raw, dest)
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailable: fall through to compute without it.
		value, cerr := compute()
		if cerr != nil {
			return cerr
		}
		return reencode(value, dest)
	}

	raw, err, _ := c.group.Do(key, func() (any, error) {
		value, err := compute()
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			// Serving the fresh value matters more than storing it.
			return encoded, nil
		}
		return encoded, nil
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(raw.([]byte), dest)
}

// Invalidate drops every cached report for a firm, called after postings.
func (c *Cache) Invalidate(ctx context.Context, firmID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("reports:%d:*", firmID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func reencode(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
