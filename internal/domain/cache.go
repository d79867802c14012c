package domain

//go:generate mockgen -destination mocks/mock_cache.go -package mocks github.com/webhookrelay/relay/internal/domain Cache

import "context"

// Cache is the low-latency subscription lookup used by C2. Implementations
// must make failures best-effort: Put and Invalidate swallow errors after
// logging them, never propagating to the caller.
type Cache interface {
	// Put unconditionally overwrites the cached projection for sub.ID.
	Put(ctx context.Context, sub *Subscription) error
	// Get returns the cached projection, or (nil, nil) on a clean miss.
	Get(ctx context.Context, id string) (*CacheProjection, error)
	// Invalidate unconditionally deletes the cached entry for id.
	Invalidate(ctx context.Context, id string) error
}
