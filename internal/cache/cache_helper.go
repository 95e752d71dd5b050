package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheHelper wraps a redis client with key prefixing and binary-safe
// get/set/scan helpers.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// GetCacheKey generates a cache key with prefix
func (c *CacheHelper) GetCacheKey(key string) string {
	return fmt.Sprintf("%s%s", c.prefix, key)
}

func (c *CacheHelper) stripPrefix(fullKey string) string {
	return strings.TrimPrefix(fullKey, c.prefix)
}

// GetBytes retrieves raw bytes. A missing key yields ErrCacheNotFound.
func (c *CacheHelper) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("cache get error: %w", err)
	}
	return data, nil
}

// SetBytes stores raw bytes without expiry.
func (c *CacheHelper) SetBytes(ctx context.Context, key string, value []byte) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}
	return c.client.Set(ctx, c.GetCacheKey(key), value, 0).Err()
}

// Delete removes keys in a single call
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}
	if len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// ScanKeys lists keys (without prefix) matching pattern using SCAN instead of KEYS
func (c *CacheHelper) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	if c.client == nil {
		return nil, ErrCacheNotAvailable
	}

	fullPattern := c.GetCacheKey(pattern)
	var cursor uint64
	var keys []string
	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			slog.ErrorContext(ctx, "Cache scan pattern error",
				"error", err,
				"pattern", fullPattern)
			return nil, fmt.Errorf("cache scan pattern error: %w", err)
		}
		for _, k := range scanKeys {
			keys = append(keys, c.stripPrefix(k))
		}
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// GetMultiple fetches several keys with one MGET; missing keys are omitted.
func (c *CacheHelper) GetMultiple(ctx context.Context, keys []string) (map[string][]byte, error) {
	if c.client == nil {
		return nil, ErrCacheNotAvailable
	}
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}
	values, err := c.client.MGet(ctx, cacheKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("cache mget error: %w", err)
	}

	result := make(map[string][]byte, len(keys))
	for i, v := range values {
		if s, ok := v.(string); ok {
			result[keys[i]] = []byte(s)
		}
	}
	return result, nil
}

// InvalidatePattern removes all keys matching a pattern
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	keys, err := c.ScanKeys(ctx, pattern)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		batch := make([]string, 0, end-i)
		for _, k := range keys[i:end] {
			batch = append(batch, c.GetCacheKey(k))
		}
		pipe.Del(ctx, batch...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		slog.ErrorContext(ctx, "Cache pipeline delete error",
			"error", err,
			"total_keys", len(keys))
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}
	return nil
}

func (c *CacheHelper) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
