// Package cache is a small JSON read-through cache on Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"govsupport-chatbot/internal/common/metrics"
)

// Cache stores JSON values under a key prefix. Redis errors are
// treated as misses; callers always fall back to the source.
type Cache struct {
	client redis.Cmdable
	name   string
	prefix string
	ttl    time.Duration
}

// New returns a cache named name (used as metric label) storing keys
// under prefix. A nil client disables caching.
func New(client redis.Cmdable, name, prefix string, ttl time.Duration) *Cache {
	return &Cache{client: client, name: name, prefix: prefix, ttl: ttl}
}

// Key hashes parts into a stable key suffix.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}

// Get decodes the cached value into dst and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil || c.client == nil {
		return false
	}
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		metrics.ObserveCache(c.name, false)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		metrics.ObserveCache(c.name, false)
		return false
	}
	metrics.ObserveCache(c.name, true)
	return true
}

// Set stores value. Failures are returned for logging only.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, c.ttl).Err()
}
