package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhookrelay/relay/internal/domain"
)

func TestDeliveryLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeliveryLogRepository(db)
	status := 200
	log := &domain.DeliveryLog{
		ID:             "log-1",
		WebhookID:      "wh-1",
		SubscriptionID: "sub-1",
		TargetURL:      "https://example.com/hook",
		AttemptNumber:  1,
		Outcome:        domain.OutcomeSuccess,
		StatusCode:     &status,
	}

	mock.ExpectExec(`INSERT INTO delivery_logs`).
		WithArgs("log-1", "wh-1", "sub-1", "https://example.com/hook", sqlmock.AnyArg(), 1, "Success", &status, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), log)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveryLogRepository_CountByWebhookID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeliveryLogRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM delivery_logs`).
		WithArgs("wh-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByWebhookID(context.Background(), "wh-1")

	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDeliveryLogRepository_ListByWebhookID_OrdersNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeliveryLogRepository(db)
	now := time.Now().UTC()
	status := 503

	rows := sqlmock.NewRows([]string{"id", "webhook_id", "subscription_id", "target_url", "timestamp", "attempt_number", "outcome", "status_code", "error"}).
		AddRow("log-3", "wh-1", "sub-1", "https://example.com/hook", now, 3, "Failure", &status, "HTTP 503").
		AddRow("log-2", "wh-1", "sub-1", "https://example.com/hook", now.Add(-time.Minute), 2, "Failed Attempt", &status, "HTTP 503").
		AddRow("log-1", "wh-1", "sub-1", "https://example.com/hook", now.Add(-2*time.Minute), 1, "Failed Attempt", &status, "HTTP 503")

	mock.ExpectQuery(`SELECT (.+) FROM delivery_logs WHERE webhook_id = \$1`).
		WithArgs("wh-1").
		WillReturnRows(rows)

	logs, err := repo.ListByWebhookID(context.Background(), "wh-1", 20)

	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, 3, logs[0].AttemptNumber)
	assert.Equal(t, domain.OutcomeFailure, logs[0].Outcome)
	assert.Equal(t, 1, logs[2].AttemptNumber)
}

func TestDeliveryLogRepository_DeleteOlderThan(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeliveryLogRepository(db)
	cutoff := time.Now().Add(-72 * time.Hour)

	mock.ExpectExec(`DELETE FROM delivery_logs WHERE timestamp < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)

	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
}
