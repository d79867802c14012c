package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisCache(rdb, logger.NewLogger()), mr
}

func TestRedisCache_PutGet(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()

	sub := &domain.Subscription{ID: "sub-1", TargetURL: "https://example.com/hook", Secret: "s3cr3t", Events: []string{"order.created"}}

	require.NoError(t, c.Put(ctx, sub))

	proj, err := c.Get(ctx, "sub-1")
	require.NoError(t, err)
	require.NotNil(t, proj)
	assert.Equal(t, "sub-1", proj.ID)
	assert.Equal(t, "https://example.com/hook", proj.TargetURL)
	assert.Equal(t, "s3cr3t", proj.Secret)
}

func TestRedisCache_Get_Miss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	proj, err := c.Get(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, proj)
}

func TestRedisCache_Get_CorruptEntryTreatedAsMiss(t *testing.T) {
	c, mr := newTestRedisCache(t)

	require.NoError(t, mr.Set(cacheKey("sub-1"), "not-json"))

	proj, err := c.Get(context.Background(), "sub-1")

	assert.NoError(t, err)
	assert.Nil(t, proj)
}

func TestRedisCache_Invalidate(t *testing.T) {
	c, _ := newTestRedisCache(t)
	ctx := context.Background()
	sub := &domain.Subscription{ID: "sub-1", TargetURL: "https://example.com/hook"}

	require.NoError(t, c.Put(ctx, sub))
	require.NoError(t, c.Invalidate(ctx, "sub-1"))

	proj, err := c.Get(ctx, "sub-1")
	assert.NoError(t, err)
	assert.Nil(t, proj)
}
