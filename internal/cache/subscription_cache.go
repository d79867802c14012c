package cache

import (
	"context"

	"github.com/webhookrelay/relay/internal/domain"
)

// SubscriptionCache implements the get_or_load read path described in §4.2:
// it returns the cached projection on a hit, and on a miss (including a
// corrupt entry) loads the canonical row from the store, writes through to
// the cache, and returns it.
type SubscriptionCache struct {
	cache domain.Cache
	repo  domain.SubscriptionRepository
}

// NewSubscriptionCache creates a new SubscriptionCache.
func NewSubscriptionCache(cache domain.Cache, repo domain.SubscriptionRepository) *SubscriptionCache {
	return &SubscriptionCache{cache: cache, repo: repo}
}

// GetOrLoad returns the subscription projection for id. It returns
// (nil, nil) only when the store itself has no such subscription.
func (c *SubscriptionCache) GetOrLoad(ctx context.Context, id string) (*domain.CacheProjection, error) {
	if proj, err := c.cache.Get(ctx, id); err == nil && proj != nil {
		return proj, nil
	}

	sub, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if _, ok := err.(*domain.ErrNotFound); ok {
			return nil, nil
		}
		return nil, err
	}

	_ = c.cache.Put(ctx, sub)

	proj := sub.Projection()
	return &proj, nil
}

// Put writes through to the underlying cache.
func (c *SubscriptionCache) Put(ctx context.Context, sub *domain.Subscription) error {
	return c.cache.Put(ctx, sub)
}

// Invalidate removes the cached entry for id.
func (c *SubscriptionCache) Invalidate(ctx context.Context, id string) error {
	return c.cache.Invalidate(ctx, id)
}
