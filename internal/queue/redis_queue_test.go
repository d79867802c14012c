package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhookrelay/relay/internal/domain"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisQueue(rdb), mr
}

func TestRedisQueue_EnqueueDequeue(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: 1}
	require.NoError(t, q.Enqueue(ctx, job))

	n, err := q.CountReady(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "wh-1", got.WebhookID)
	assert.Equal(t, 1, got.Attempt)

	n, err = q.CountReady(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestRedisQueue_Dequeue_TimeoutReturnsNil(t *testing.T) {
	q, _ := newTestQueue(t)

	got, err := q.Dequeue(context.Background(), 10*time.Millisecond)

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisQueue_EnqueueIn_NotVisibleUntilPromoted(t *testing.T) {
	q, mr := newTestQueue(t)
	ctx := context.Background()

	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: 2}
	require.NoError(t, q.EnqueueIn(ctx, time.Minute, job))

	n, err := q.CountReady(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "a scheduled job must not be visible in ready before its delay elapses")

	mr.FastForward(2 * time.Minute)

	promoted, err := q.promoteDue(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, promoted)

	n, err = q.CountReady(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
