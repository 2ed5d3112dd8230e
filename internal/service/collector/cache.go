package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trendlens/internal/domain/trend"
)

const defaultTrendTTL = 10 * time.Minute

// Cache is a Redis cache-aside layer in front of trend collectors. A Cache
// without a client passes every call straight through.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewCache connects to redisURL. An empty URL or a failed connection yields a
// pass-through cache.
func NewCache(redisURL string, ttl time.Duration, log zerolog.Logger) *Cache {
	log = log.With().Str("component", "trend_cache").Logger()

	if redisURL == "" {
		log.Info().Msg("redis: no URL configured, trend caching disabled")
		return &Cache{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis: invalid URL, trend caching disabled")
		return &Cache{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis: connection failed, trend caching disabled")
		_ = rdb.Close()
		return &Cache{log: log}
	}

	log.Info().Msg("redis: connected, trend caching enabled")
	return NewCacheWithClient(rdb, ttl, log)
}

// NewCacheWithClient wraps an existing client
func NewCacheWithClient(rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTrendTTL
	}
	return &Cache{rdb: rdb, ttl: ttl, log: log}
}

// Enabled reports whether a Redis client is attached
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Wrap returns col behind the cache, or col itself when caching is disabled
func (c *Cache) Wrap(col trend.Collector) trend.Collector {
	if !c.Enabled() {
		return col
	}
	return &cachedCollector{next: col, cache: c}
}

// Close releases the Redis client
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) get(ctx context.Context, key string) ([]string, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("redis: get failed")
		return nil, false
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		return nil, false
	}
	return terms, true
}

func (c *Cache) set(ctx context.Context, key string, terms []string) {
	data, err := json.Marshal(terms)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Str("key", key).Msg("redis: set failed")
	}
}

type cachedCollector struct {
	next  trend.Collector
	cache *Cache
}

func (cc *cachedCollector) Source() trend.Source {
	return cc.next.Source()
}

// FetchTrends serves from Redis when possible. Only successful lists are cached.
func (cc *cachedCollector) FetchTrends(ctx context.Context, q trend.Query) ([]string, error) {
	key := cacheKey(cc.next.Source(), q)

	if terms, ok := cc.cache.get(ctx, key); ok {
		return terms, nil
	}

	terms, err := cc.next.FetchTrends(ctx, q)
	if err != nil {
		return nil, err
	}

	cc.cache.set(ctx, key, terms)
	return terms, nil
}

// cacheKey scopes X entries by subject too, since its fallback depends on it
func cacheKey(source trend.Source, q trend.Query) string {
	key := fmt.Sprintf("trendlens:trends:%s:%s", source, strings.ToUpper(q.Region))
	if source == trend.SourceX {
		key += ":" + strings.ToLower(strings.TrimSpace(q.Subject))
	}
	return key
}
