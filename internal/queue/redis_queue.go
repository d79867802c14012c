// Package queue implements the delivery job queue (C3) on top of Redis: a
// ready FIFO list and a scheduled sorted set keyed by ready_at, promoted
// into ready by Scheduler.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/webhookrelay/relay/internal/domain"
)

const (
	readyKey     = "queue:ready"
	scheduledKey = "queue:scheduled"
)

// promoteScript atomically moves every scheduled member whose score (ready_at
// as a unix timestamp) is at or before the supplied cursor into the ready
// list, preserving relative order by score.
var promoteScript = redis.NewScript(`
local due = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for i, member in ipairs(due) do
	redis.call('ZREM', KEYS[1], member)
	redis.call('LPUSH', KEYS[2], member)
end
return #due
`)

// RedisQueue implements domain.Queue.
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue creates a new RedisQueue.
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue appends job to the ready list.
func (q *RedisQueue) Enqueue(ctx context.Context, job domain.DeliveryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}

	if err := q.rdb.LPush(ctx, readyKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue delivery job: %w", err)
	}

	return nil
}

// EnqueueIn places job in the scheduled set with a ready_at of now+delay.
func (q *RedisQueue) EnqueueIn(ctx context.Context, delay time.Duration, job domain.DeliveryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery job: %w", err)
	}

	readyAt := time.Now().Add(delay).Unix()

	if err := q.rdb.ZAdd(ctx, scheduledKey, redis.Z{Score: float64(readyAt), Member: data}).Err(); err != nil {
		return fmt.Errorf("failed to schedule delivery job: %w", err)
	}

	return nil
}

// Dequeue blocks up to timeout for one ready job.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.DeliveryJob, error) {
	result, err := q.rdb.BRPop(ctx, timeout, readyKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue delivery job: %w", err)
	}

	// BRPop returns [key, value].
	var job domain.DeliveryJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delivery job: %w", err)
	}

	return &job, nil
}

// CountReady reports the observed size of the ready list.
func (q *RedisQueue) CountReady(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, readyKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count ready jobs: %w", err)
	}
	return n, nil
}

// promoteDue moves every scheduled job whose ready_at has passed into ready.
// Returns the number of jobs promoted.
func (q *RedisQueue) promoteDue(ctx context.Context) (int64, error) {
	now := time.Now().Unix()
	res, err := promoteScript.Run(ctx, q.rdb, []string{scheduledKey, readyKey}, now).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to promote scheduled jobs: %w", err)
	}

	n, _ := res.(int64)
	return n, nil
}
