package domain

//go:generate mockgen -destination mocks/mock_queue.go -package mocks github.com/webhookrelay/relay/internal/domain Queue

import (
	"context"
	"time"
)

// Queue is the job queue used by C3: a ready FIFO plus a time-delayed
// scheduled set that feeds back into ready once a job's ready_at has passed.
type Queue interface {
	// Enqueue appends job to the ready queue.
	Enqueue(ctx context.Context, job DeliveryJob) error
	// EnqueueIn places job in the scheduled set, visible in ready once delay
	// has elapsed.
	EnqueueIn(ctx context.Context, delay time.Duration, job DeliveryJob) error
	// Dequeue blocks up to timeout for one ready job. Returns (nil, nil) on
	// timeout with no job available.
	Dequeue(ctx context.Context, timeout time.Duration) (*DeliveryJob, error)
	// CountReady reports the observed size of the ready queue.
	CountReady(ctx context.Context) (int64, error)
}
