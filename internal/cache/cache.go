// Package cache is an advisory Redis cache for read-heavy listings. The core
// never depends on it for correctness: every operation degrades to a miss
// when Redis is down or the client is nil.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "parkhub:"

// Keys invalidated after state-changing reservation operations, plus their
// read-path TTLs.
const (
	ParkingLotsKey    = "parking-lots"
	UserSpendingKey   = "user-spending"
	AdminAnalyticsKey = "admin-analytics"

	ParkingLotsTTL    = 5 * time.Minute
	UserSpendingTTL   = 10 * time.Minute
	AdminAnalyticsTTL = 15 * time.Minute
)

type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// GetJSON reports whether key was found and, if so, unmarshals it into dest.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("cache: unmarshal %q: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("cache: marshal %q: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		log.Printf("cache: set %q: %v", key, err)
	}
}

// InvalidatePattern deletes every key matching pattern (glob syntax, without
// the internal prefix), e.g. InvalidatePattern(ctx, "parking-lots*").
func (c *Cache) InvalidatePattern(ctx context.Context, pattern string) {
	if c == nil || c.client == nil {
		return
	}
	keys, err := c.client.Keys(ctx, keyPrefix+pattern).Result()
	if err != nil {
		log.Printf("cache: keys %q: %v", pattern, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: del %q: %v", pattern, err)
		return
	}
	log.Printf("cache: invalidated %d keys matching %q", len(keys), pattern)
}
