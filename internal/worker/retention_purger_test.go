package worker

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/webhookrelay/relay/internal/domain/mocks"
	"github.com/webhookrelay/relay/pkg/logger"
)

func TestRetentionPurger_RunOnce_DeletesOlderThanHorizon(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logs := mocks.NewMockDeliveryLogRepository(ctrl)
	logs.EXPECT().DeleteOlderThan(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cutoff time.Time) (int64, error) {
			expected := time.Now().Add(-72 * time.Hour)
			if cutoff.After(expected.Add(time.Second)) || cutoff.Before(expected.Add(-time.Second)) {
				t.Errorf("cutoff %v not within tolerance of expected %v", cutoff, expected)
			}
			return 1, nil
		})

	p := NewRetentionPurger(logs, logger.NewLogger(), time.Hour, 72*time.Hour)
	p.runOnce(context.Background())
}
