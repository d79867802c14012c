package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

// RetentionPurger periodically deletes delivery log rows older than the
// retention horizon (C6).
type RetentionPurger struct {
	logs     domain.DeliveryLogRepository
	logger   logger.Logger
	horizon  time.Duration
	interval time.Duration
}

// NewRetentionPurger creates a new RetentionPurger. interval is how often a
// purge run fires; horizon is how old a log must be to be deleted.
func NewRetentionPurger(logs domain.DeliveryLogRepository, log logger.Logger, interval, horizon time.Duration) *RetentionPurger {
	return &RetentionPurger{
		logs:     logs,
		logger:   log,
		horizon:  horizon,
		interval: interval,
	}
}

// Start runs the purge loop until ctx is cancelled.
func (p *RetentionPurger) Start(ctx context.Context) {
	p.logger.WithField("interval", p.interval.String()).Info("retention purger started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("retention purger stopping")
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

// runOnce performs a single purge pass and logs the number of rows deleted.
func (p *RetentionPurger) runOnce(ctx context.Context) {
	cutoff := time.Now().Add(-p.horizon)

	deleted, err := p.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		p.logger.WithField("error", err.Error()).Error("retention purge failed")
		return
	}

	if deleted > 0 {
		p.logger.WithField("deleted", fmt.Sprintf("%d", deleted)).Info("purged expired delivery logs")
	}
}
