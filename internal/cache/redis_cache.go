// Package cache implements the subscription lookup cache (C2) on top of
// Redis. Failures are logged and swallowed: correctness always falls back
// to the persistent store, per the write-through contract in §4.2.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

const keyPrefix = "subscription:"

// RedisCache implements domain.Cache backed by a single Redis client.
type RedisCache struct {
	rdb    *redis.Client
	logger logger.Logger
}

// NewRedisCache creates a new RedisCache.
func NewRedisCache(rdb *redis.Client, log logger.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, logger: log}
}

func cacheKey(id string) string {
	return keyPrefix + id
}

// Put unconditionally overwrites the cached projection for sub.ID. Failures
// are logged and swallowed.
func (c *RedisCache) Put(ctx context.Context, sub *domain.Subscription) error {
	data, err := json.Marshal(sub.Projection())
	if err != nil {
		c.logger.WithField("subscription_id", sub.ID).Error(fmt.Sprintf("failed to marshal subscription projection: %v", err))
		return nil
	}

	if err := c.rdb.Set(ctx, cacheKey(sub.ID), data, 0).Err(); err != nil {
		c.logger.WithField("subscription_id", sub.ID).Error(fmt.Sprintf("failed to cache subscription: %v", err))
	}

	return nil
}

// Get returns the cached projection for id, or (nil, nil) on a clean miss or
// a corrupt entry.
func (c *RedisCache) Get(ctx context.Context, id string) (*domain.CacheProjection, error) {
	data, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		c.logger.WithField("subscription_id", id).Error(fmt.Sprintf("failed to read subscription from cache: %v", err))
		return nil, nil
	}

	var proj domain.CacheProjection
	if err := json.Unmarshal(data, &proj); err != nil {
		c.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("discarding corrupt cache entry: %v", err))
		return nil, nil
	}

	return &proj, nil
}

// Invalidate unconditionally deletes the cached entry for id. Failures are
// logged and swallowed.
func (c *RedisCache) Invalidate(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.logger.WithField("subscription_id", id).Error(fmt.Sprintf("failed to invalidate cached subscription: %v", err))
	}
	return nil
}
