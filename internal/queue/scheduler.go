package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/webhookrelay/relay/pkg/logger"
)

// Scheduler periodically promotes scheduled jobs whose ready_at has passed
// into the ready queue.
type Scheduler struct {
	queue        *RedisQueue
	logger       logger.Logger
	pollInterval time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(queue *RedisQueue, log logger.Logger) *Scheduler {
	return &Scheduler{
		queue:        queue,
		logger:       log,
		pollInterval: time.Second,
	}
}

// Start runs the promotion loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("job scheduler started")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job scheduler stopping")
			return
		case <-ticker.C:
			if n, err := s.queue.promoteDue(ctx); err != nil {
				s.logger.WithField("error", err.Error()).Error("failed to promote scheduled jobs")
			} else if n > 0 {
				s.logger.WithField("promoted", fmt.Sprintf("%d", n)).Debug("promoted scheduled jobs to ready")
			}
		}
	}
}
