package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lotline/backend/internal/domain/stock"
	"github.com/lotline/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rollupKeyPrefix = "rollup:"

// RedisRollupCache caches computed rollup results in Redis, keyed by a
// content hash of the full input tuple. The cache is advisory: any Redis
// failure is logged and reported as a miss so the caller recomputes.
type RedisRollupCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRollupCache creates a new Redis-backed rollup cache
func NewRedisRollupCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisRollupCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRollupCacheWithClient(client, ttl, logger), nil
}

// NewRedisRollupCacheWithClient creates a cache using an existing Redis client
func NewRedisRollupCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRollupCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRollupCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get fetches a cached rollup result. Returns false on miss or failure.
func (c *RedisRollupCache) Get(ctx context.Context, key string) (*stock.RollupResult, bool) {
	payload, err := c.client.Get(ctx, rollupKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("rollup cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var result stock.RollupResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn("rollup cache entry corrupt, discarding", zap.Error(err))
		return nil, false
	}
	return &result, true
}

// Set stores a rollup result with the configured TTL
func (c *RedisRollupCache) Set(ctx context.Context, key string, result *stock.RollupResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("rollup cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, rollupKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("rollup cache write failed", zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisRollupCache) Close() error {
	return c.client.Close()
}
