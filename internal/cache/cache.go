// Package cache implements the read-through cache in front of the catalog queries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asthar/asthar-backend/pkg/logger"
	"github.com/asthar/asthar-backend/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	CategoriesKey = "categories:all"
	FlashSaleKey  = "products:flash-sale"

	// CategoriesTTL is fixed regardless of the configured default.
	CategoriesTTL = 5 * time.Minute

	scanCount = 100
)

func ProductKey(slug string) string {
	return fmt.Sprintf("product:%s", slug)
}

func CategoryKey(slug string) string {
	return fmt.Sprintf("category:%s", slug)
}

// Client is the subset of the redis client the cache needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cache stores JSON documents in Redis. A Cache without a client passes every
// lookup through to the loader.
type Cache struct {
	client  Client
	ttl     time.Duration
	metrics *metrics.CacheMetrics
}

func New(client Client, ttl time.Duration, m *metrics.CacheMetrics) *Cache {
	return &Cache{client: client, ttl: ttl, metrics: m}
}

// Disabled returns a pass-through cache.
func Disabled() *Cache {
	return &Cache{}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// TTL is the default expiry for entries.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// GetOrSet returns the cached value under key, or loads it with fetch and
// caches the result for ttl. Redis failures degrade to calling fetch; fetch
// errors are returned and nothing is cached.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return fetch(ctx)
	}

	family := familyOf(key)
	if cached, ok := c.get(ctx, key, family); ok {
		var value T
		if err := json.Unmarshal(cached, &value); err == nil {
			c.metrics.Hit(family)
			return value, nil
		}
		logger.Warn("Discarding undecodable cache entry", logger.Fields{"key": key})
	}
	c.metrics.Miss(family)

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if ttl <= 0 {
		ttl = c.ttl
	}
	c.set(ctx, key, family, value, ttl)
	return value, nil
}

func (c *Cache) get(ctx context.Context, key, family string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.metrics.Error(family)
		logger.Error("Redis GET failed", err, logger.Fields{"key": key})
		return nil, false
	}
	return data, true
}

func (c *Cache) set(ctx context.Context, key, family string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to encode cache entry", err, logger.Fields{"key": key})
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.metrics.Error(family)
		logger.Error("Redis SET failed", err, logger.Fields{"key": key})
	}
}

// Delete removes keys from the cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.metrics.Error(familyOf(keys[0]))
		return fmt.Errorf("delete cache keys: %w", err)
	}
	return nil
}

// DeletePattern removes every key matching a Redis glob pattern. Keys are
// collected with SCAN before any are deleted.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	var keys []string
	var cursor uint64
	for {
		page, next, err := c.client.Scan(ctx, cursor, pattern, scanCount).Result()
		if err != nil {
			c.metrics.Error(familyOf(pattern))
			return 0, fmt.Errorf("scan %s: %w", pattern, err)
		}
		keys = append(keys, page...)
		if next == 0 {
			break
		}
		cursor = next
	}

	if len(keys) == 0 {
		return 0, nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.metrics.Error(familyOf(pattern))
		return 0, fmt.Errorf("delete %s: %w", pattern, err)
	}
	return len(keys), nil
}

func familyOf(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
