package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/internal/domain/mocks"
	"github.com/webhookrelay/relay/pkg/logger"
)

type fakeSubscriptionLookup struct {
	proj *domain.CacheProjection
	err  error
}

func (f *fakeSubscriptionLookup) GetOrLoad(ctx context.Context, id string) (*domain.CacheProjection, error) {
	return f.proj, f.err
}

func TestDeliveryWorker_ProcessJob_SuccessLogsNoRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sub := &fakeSubscriptionLookup{proj: &domain.CacheProjection{ID: "sub-1", TargetURL: server.URL}}
	logs := mocks.NewMockDeliveryLogRepository(ctrl)
	queue := mocks.NewMockQueue(ctrl)

	logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, log *domain.DeliveryLog) error {
		assert.Equal(t, domain.OutcomeSuccess, log.Outcome)
		assert.Equal(t, 1, log.AttemptNumber)
		require.NotNil(t, log.StatusCode)
		assert.Equal(t, 200, *log.StatusCode)
		assert.Nil(t, log.Error)
		return nil
	})
	// no EnqueueIn expected on success

	w := NewDeliveryWorker(sub, logs, queue, server.Client(), logger.NewLogger(), 1)
	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: 1, Payload: map[string]interface{}{"yo": "yo"}}

	w.processJob(context.Background(), job)
}

func TestDeliveryWorker_ProcessJob_FailureBeforeMaxSchedulesRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sub := &fakeSubscriptionLookup{proj: &domain.CacheProjection{ID: "sub-1", TargetURL: server.URL}}
	logs := mocks.NewMockDeliveryLogRepository(ctrl)
	queue := mocks.NewMockQueue(ctrl)

	logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, log *domain.DeliveryLog) error {
		assert.Equal(t, domain.OutcomeFailedAttempt, log.Outcome)
		require.NotNil(t, log.StatusCode)
		assert.Equal(t, 503, *log.StatusCode)
		require.NotNil(t, log.Error)
		assert.Contains(t, *log.Error, "HTTP 503")
		return nil
	})
	queue.EXPECT().EnqueueIn(gomock.Any(), domain.BackoffSchedule[0], gomock.Any()).DoAndReturn(
		func(_ context.Context, delay time.Duration, job domain.DeliveryJob) error {
			assert.Equal(t, 2, job.Attempt)
			return nil
		})

	w := NewDeliveryWorker(sub, logs, queue, server.Client(), logger.NewLogger(), 1)
	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: 1}

	w.processJob(context.Background(), job)
}

func TestDeliveryWorker_ProcessJob_ExhaustedRetriesNoRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sub := &fakeSubscriptionLookup{proj: &domain.CacheProjection{ID: "sub-1", TargetURL: server.URL}}
	logs := mocks.NewMockDeliveryLogRepository(ctrl)
	queue := mocks.NewMockQueue(ctrl)

	logs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, log *domain.DeliveryLog) error {
		assert.Equal(t, domain.OutcomeFailure, log.Outcome)
		return nil
	})
	// no EnqueueIn expected at MaxAttempts

	w := NewDeliveryWorker(sub, logs, queue, server.Client(), logger.NewLogger(), 1)
	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: domain.MaxAttempts}

	w.processJob(context.Background(), job)
}

func TestDeliveryWorker_ProcessJob_SubscriptionDeletedDropsSilently(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sub := &fakeSubscriptionLookup{proj: nil}
	logs := mocks.NewMockDeliveryLogRepository(ctrl)
	queue := mocks.NewMockQueue(ctrl)
	// no Create, no EnqueueIn expected

	w := NewDeliveryWorker(sub, logs, queue, http.DefaultClient, logger.NewLogger(), 1)
	job := domain.DeliveryJob{WebhookID: "wh-1", SubscriptionID: "sub-1", Attempt: 1}

	w.processJob(context.Background(), job)
}

func TestClassify(t *testing.T) {
	outcome, retry := classify(1, nil)
	assert.Equal(t, domain.OutcomeSuccess, outcome)
	assert.False(t, retry)

	outcome, retry = classify(1, &domain.ErrDeliveryHTTP{StatusCode: 503})
	assert.Equal(t, domain.OutcomeFailedAttempt, outcome)
	assert.True(t, retry)

	outcome, retry = classify(domain.MaxAttempts, &domain.ErrDeliveryHTTP{StatusCode: 503})
	assert.Equal(t, domain.OutcomeFailure, outcome)
	assert.False(t, retry)
}
