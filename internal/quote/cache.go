package quote

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is a read-through Redis cache in front of another Provider. Only
// successful lookups are cached; not-found and unavailable results always go
// back to the underlying provider.
type Cache struct {
	next Provider
	rdb  *redis.Client
	ttl  time.Duration
}

// NewCache wraps next with a Redis cache holding quotes for ttl.
func NewCache(next Provider, rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl}
}

// Lookup returns the cached quote for symbol if present, otherwise asks the
// underlying provider and caches the result.
func (c *Cache) Lookup(ctx context.Context, symbol string) (*Quote, error) {
	key := "quote:" + strings.ToUpper(strings.TrimSpace(symbol))

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var q Quote
		if err := json.Unmarshal([]byte(cached), &q); err == nil {
			return &q, nil
		}
	}

	q, err := c.next.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(q); err == nil {
		c.rdb.Set(ctx, key, data, c.ttl)
	}
	return q, nil
}
