package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/herbwise/fangmatch/internal/infrastructure/monitoring/logging"
	"github.com/herbwise/fangmatch/pkg/errors"
)

// Sentinel errors of the cache layer.
var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "cache serialization failed")
)

// nullSentinel marks a cached "the loader found nothing" so repeated misses
// do not hammer the backing service.
const nullSentinel = "__null__"

// Cache is the read-through cache contract the matching service depends on.
type Cache interface {
	// Get unmarshals the cached value into dest; ErrCacheMiss when absent.
	Get(ctx context.Context, key string, dest interface{}) error

	// Set stores value under key.  A zero ttl uses the cache default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// GetOrSet returns the cached value, or runs loader exactly once per
	// key across concurrent callers, caches its result, and returns it.  A
	// loader returning (nil, nil) is cached as a short-lived null so the
	// miss is not retried immediately; GetOrSet reports it as ErrCacheMiss.
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
}

type cache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	nullCacheTTL time.Duration
	group        singleflight.Group
}

// CacheOption customizes a Cache.
type CacheOption func(*cache)

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) CacheOption {
	return func(c *cache) { c.prefix = prefix }
}

// WithDefaultTTL sets the ttl used when Set/GetOrSet receive zero.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *cache) { c.defaultTTL = ttl }
}

// WithNullCacheTTL sets how long "nothing found" results are remembered.
func WithNullCacheTTL(ttl time.Duration) CacheOption {
	return func(c *cache) { c.nullCacheTTL = ttl }
}

// NewCache builds a JSON-serializing cache on top of client.
func NewCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	c := &cache{
		client:       client,
		logger:       log,
		prefix:       "fangmatch:",
		defaultTTL:   time.Hour,
		nullCacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cache) fullKey(key string) string {
	return c.prefix + key
}

// jitterTTL spreads expirations +/-10% so keys written together do not all
// expire together.
func (c *cache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.raw().Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if string(data) == nullSentinel {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed
	}
	return nil
}

func (c *cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := c.client.raw().Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache key")
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.raw().Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete cache keys")
	}
	return nil
}

func (c *cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.IsCode(err, errors.ErrCodeNotFound) {
		c.logger.Warn("cache read failed, falling through to loader",
			logging.String("key", key), logging.Err(err))
	}

	// A null sentinel also reads as a miss; check it before the loader so
	// a recent empty result short-circuits.
	if data, err := c.client.raw().Get(ctx, c.fullKey(key)).Bytes(); err == nil && string(data) == nullSentinel {
		return ErrCacheMiss
	}

	// Collapse concurrent misses for the same key into one loader call.
	value, err, _ := c.group.Do(c.fullKey(key), func() (interface{}, error) {
		return loader(ctx)
	})
	if err != nil {
		return err
	}
	if value == nil {
		if err := c.client.raw().Set(ctx, c.fullKey(key), nullSentinel, c.nullCacheTTL).Err(); err != nil {
			c.logger.Warn("failed to cache null result", logging.String("key", key), logging.Err(err))
		}
		return ErrCacheMiss
	}

	if err := c.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("failed to cache loaded value", logging.String("key", key), logging.Err(err))
	}

	// Round-trip through JSON so dest gets the same shape a later cache
	// hit would produce.
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed
	}
	return nil
}
