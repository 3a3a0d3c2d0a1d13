package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/diabetes-prediction-engine/internal/domain"
)

const typeInfoKeyPrefix = "diabetes:type-info:"

// CacheClient wraps Redis as the shared tier for reference data.
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

// CachedTypeInfo is the Redis envelope for a reference record.
type CachedTypeInfo struct {
	Data      *domain.DiabetesTypeInfo `json:"data"`
	CachedAt  time.Time                `json:"cached_at"`
	ExpiresAt time.Time                `json:"expires_at"`
}

// GetTypeInfo returns a cached reference record. found is false on a miss.
func (c *CacheClient) GetTypeInfo(ctx context.Context, name string) (*domain.DiabetesTypeInfo, bool, error) {
	key := typeInfoKey(name)

	val, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get type info cache: %w", err)
	}

	var cached CachedTypeInfo
	if err := json.Unmarshal([]byte(val), &cached); err != nil || cached.Data == nil {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// SetTypeInfo caches a reference record. A zero ttl uses the default.
func (c *CacheClient) SetTypeInfo(ctx context.Context, info *domain.DiabetesTypeInfo, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	cached := CachedTypeInfo{
		Data:      info,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal type info cache data: %w", err)
	}

	return c.redis.Set(ctx, typeInfoKey(info.NameEn), jsonData, ttl).Err()
}

// InvalidateTypeInfo removes one cached record.
func (c *CacheClient) InvalidateTypeInfo(ctx context.Context, name string) error {
	return c.redis.Del(ctx, typeInfoKey(name)).Err()
}

// InvalidateAll removes every cached reference record.
func (c *CacheClient) InvalidateAll(ctx context.Context) error {
	var keys []string
	iter := c.redis.Scan(ctx, 0, typeInfoKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan type info keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

// Ping checks if Redis connection is alive
func (c *CacheClient) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

func typeInfoKey(name string) string {
	return typeInfoKeyPrefix + strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
