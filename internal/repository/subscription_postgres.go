package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/webhookrelay/relay/internal/domain"
)

// subscriptionPsql is a Squirrel StatementBuilder configured for PostgreSQL.
var subscriptionPsql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// SubscriptionRepository implements domain.SubscriptionRepository.
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository.
func NewSubscriptionRepository(db *sql.DB) domain.SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a new subscription row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	query, args, err := subscriptionPsql.
		Insert("subscriptions").
		Columns("id", "target_url", "secret", "events", "created_at", "updated_at").
		Values(sub.ID, sub.TargetURL, sub.Secret, pq.Array(sub.Events), sub.CreatedAt, sub.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by id.
func (r *SubscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query, args, err := subscriptionPsql.
		Select("id", "target_url", "secret", "events", "created_at", "updated_at").
		From("subscriptions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "subscription", ID: id}
	}
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// List returns subscriptions ordered by creation time, paginated by skip/limit.
func (r *SubscriptionRepository) List(ctx context.Context, skip, limit int) ([]*domain.Subscription, error) {
	query, args, err := subscriptionPsql.
		Select("id", "target_url", "secret", "events", "created_at", "updated_at").
		From("subscriptions").
		OrderBy("created_at ASC").
		Offset(uint64(skip)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscriptionFromRows(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// Update persists all mutable fields of sub.
func (r *SubscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	query, args, err := subscriptionPsql.
		Update("subscriptions").
		Set("target_url", sub.TargetURL).
		Set("secret", sub.Secret).
		Set("events", pq.Array(sub.Events)).
		Set("updated_at", sub.UpdatedAt).
		Where(sq.Eq{"id": sub.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: sub.ID}
	}

	return nil
}

// Delete removes a subscription row.
func (r *SubscriptionRepository) Delete(ctx context.Context, id string) error {
	query, args, err := subscriptionPsql.
		Delete("subscriptions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: id}
	}

	return nil
}

func scanSubscription(row *sql.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := row.Scan(&sub.ID, &sub.TargetURL, &sub.Secret, pq.Array(&sub.Events), &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func scanSubscriptionFromRows(rows *sql.Rows) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := rows.Scan(&sub.ID, &sub.TargetURL, &sub.Secret, pq.Array(&sub.Events), &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &sub, nil
}
