package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/webhookrelay/relay/internal/domain"
)

// deliveryLogPsql is a Squirrel StatementBuilder configured for PostgreSQL.
var deliveryLogPsql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DeliveryLogRepository implements domain.DeliveryLogRepository.
type DeliveryLogRepository struct {
	db *sql.DB
}

// NewDeliveryLogRepository creates a new DeliveryLogRepository.
func NewDeliveryLogRepository(db *sql.DB) domain.DeliveryLogRepository {
	return &DeliveryLogRepository{db: db}
}

// Create inserts one append-only attempt row.
func (r *DeliveryLogRepository) Create(ctx context.Context, log *domain.DeliveryLog) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}

	query, args, err := deliveryLogPsql.
		Insert("delivery_logs").
		Columns(
			"id", "webhook_id", "subscription_id", "target_url",
			"timestamp", "attempt_number", "outcome", "status_code", "error",
		).
		Values(
			log.ID, log.WebhookID, log.SubscriptionID, log.TargetURL,
			log.Timestamp, log.AttemptNumber, string(log.Outcome), log.StatusCode, log.Error,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert delivery log: %w", err)
	}

	return nil
}

// CountByWebhookID returns the number of logged attempts for a webhook_id.
func (r *DeliveryLogRepository) CountByWebhookID(ctx context.Context, webhookID string) (int, error) {
	query, args, err := deliveryLogPsql.
		Select("COUNT(*)").
		From("delivery_logs").
		Where(sq.Eq{"webhook_id": webhookID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count delivery logs: %w", err)
	}

	return count, nil
}

// ListByWebhookID returns the most recent logs for a webhook_id, newest first.
func (r *DeliveryLogRepository) ListByWebhookID(ctx context.Context, webhookID string, limit int) ([]*domain.DeliveryLog, error) {
	query, args, err := deliveryLogPsql.
		Select("id", "webhook_id", "subscription_id", "target_url", "timestamp", "attempt_number", "outcome", "status_code", "error").
		From("delivery_logs").
		Where(sq.Eq{"webhook_id": webhookID}).
		OrderBy("attempt_number DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryLogs(ctx, query, args...)
}

// ListBySubscriptionID returns the most recent logs for a subscription, newest first.
func (r *DeliveryLogRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string, limit int) ([]*domain.DeliveryLog, error) {
	query, args, err := deliveryLogPsql.
		Select("id", "webhook_id", "subscription_id", "target_url", "timestamp", "attempt_number", "outcome", "status_code", "error").
		From("delivery_logs").
		Where(sq.Eq{"subscription_id": subscriptionID}).
		OrderBy("timestamp DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryLogs(ctx, query, args...)
}

// DeleteOlderThan bulk-deletes logs whose timestamp precedes cutoff, returning
// the number of rows removed.
func (r *DeliveryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := deliveryLogPsql.
		Delete("delivery_logs").
		Where(sq.Lt{"timestamp": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge delivery logs: %w", err)
	}

	return result.RowsAffected()
}

func (r *DeliveryLogRepository) queryLogs(ctx context.Context, query string, args ...interface{}) ([]*domain.DeliveryLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.DeliveryLog
	for rows.Next() {
		log, err := scanDeliveryLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery logs: %w", err)
	}

	return logs, nil
}

func scanDeliveryLog(rows *sql.Rows) (*domain.DeliveryLog, error) {
	var log domain.DeliveryLog
	var outcome string

	err := rows.Scan(
		&log.ID, &log.WebhookID, &log.SubscriptionID, &log.TargetURL,
		&log.Timestamp, &log.AttemptNumber, &outcome, &log.StatusCode, &log.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan delivery log: %w", err)
	}

	log.Outcome = domain.Outcome(outcome)
	return &log, nil
}
