// Package worker implements the delivery worker pool (C5) and the
// retention purge task (C6).
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

const dequeueTimeout = 5 * time.Second

// maxConcurrentDeliveries bounds how many outbound HTTP deliveries may be
// in flight at once across the whole worker pool, independent of
// workerCount, so a slow batch of targets can't pin every pool goroutine
// on an open socket.
const maxConcurrentDeliveries = 32

// DeliveryWorker drains the job queue and performs one delivery attempt per
// job, logging the outcome and rescheduling on failure per the state
// machine in §4.5.
type DeliveryWorker struct {
	subCache   subscriptionLookup
	logs       domain.DeliveryLogRepository
	queue      domain.Queue
	httpClient *http.Client
	logger     logger.Logger
	inflight   *semaphore.Weighted

	workerCount int

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// subscriptionLookup is the minimal surface DeliveryWorker needs from the
// subscription cache's get_or_load read path.
type subscriptionLookup interface {
	GetOrLoad(ctx context.Context, id string) (*domain.CacheProjection, error)
}

// NewDeliveryWorker creates a new DeliveryWorker. workerCount goroutines
// drain the queue concurrently.
func NewDeliveryWorker(
	subCache subscriptionLookup,
	logs domain.DeliveryLogRepository,
	queue domain.Queue,
	httpClient *http.Client,
	log logger.Logger,
	workerCount int,
) *DeliveryWorker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	if workerCount <= 0 {
		workerCount = 1
	}

	return &DeliveryWorker{
		subCache:    subCache,
		logs:        logs,
		queue:       queue,
		httpClient:  httpClient,
		logger:      log,
		inflight:    semaphore.NewWeighted(maxConcurrentDeliveries),
		workerCount: workerCount,
	}
}

// Start launches the worker pool. Each worker blocks on the queue until
// ctx is cancelled, letting any in-flight job finish its log write before
// exiting.
func (w *DeliveryWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true
	w.mu.Unlock()

	w.logger.WithField("worker_count", fmt.Sprintf("%d", w.workerCount)).Info("delivery worker pool starting")

	for i := 0; i < w.workerCount; i++ {
		w.wg.Add(1)
		go w.runLoop(runCtx)
	}
}

// Stop signals all workers to stop dequeuing and waits for in-flight jobs
// to complete their log write.
func (w *DeliveryWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.cancel()
	w.mu.Unlock()

	w.logger.Info("delivery worker pool stopping")
	w.wg.Wait()
	w.logger.Info("delivery worker pool stopped")
}

func (w *DeliveryWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.WithField("error", err.Error()).Error("failed to dequeue delivery job")
			continue
		}
		if job == nil {
			continue
		}

		// The job runs detached from cancellation so that a stop signal does
		// not abort its delivery, log write, or retry scheduling.
		w.processJob(context.WithoutCancel(ctx), *job)
	}
}

// processJob implements the per-job algorithm of §4.5.
func (w *DeliveryWorker) processJob(ctx context.Context, job domain.DeliveryJob) {
	sub, err := w.subCache.GetOrLoad(ctx, job.SubscriptionID)
	if err != nil {
		w.logger.WithField("error", err.Error()).Error("failed to resolve subscription for delivery job")
		return
	}
	if sub == nil {
		// Subscription was deleted while in flight; drop silently, no log row.
		return
	}

	statusCode, attemptErr := w.deliver(ctx, sub, job)

	outcome, retry := classify(job.Attempt, attemptErr)

	var errMsg *string
	if attemptErr != nil {
		msg := attemptErr.Error()
		errMsg = &msg
	}

	log := &domain.DeliveryLog{
		ID:             uuid.NewString(),
		WebhookID:      job.WebhookID,
		SubscriptionID: job.SubscriptionID,
		TargetURL:      sub.TargetURL,
		Timestamp:      time.Now().UTC(),
		AttemptNumber:  job.Attempt,
		Outcome:        outcome,
		StatusCode:     statusCode,
		Error:          errMsg,
	}

	if err := w.logs.Create(ctx, log); err != nil {
		w.logger.WithField("error", err.Error()).Error("failed to write delivery log")
		return
	}

	if retry {
		delay := domain.BackoffSchedule[job.Attempt-1]
		if err := w.queue.EnqueueIn(ctx, delay, job.NextAttempt()); err != nil {
			w.logger.WithField("error", err.Error()).Error("failed to schedule delivery retry")
		}
	}
}

// deliver performs the outbound HTTP POST and returns the response status
// code (nil on transport failure) and any error encountered.
func (w *DeliveryWorker) deliver(ctx context.Context, sub *domain.CacheProjection, job domain.DeliveryJob) (*int, error) {
	if err := w.inflight.Acquire(ctx, 1); err != nil {
		return nil, &domain.ErrDeliveryTransport{TargetURL: sub.TargetURL, Err: err}
	}
	defer w.inflight.Release(1)

	body, err := json.Marshal(job.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.TargetURL, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.ErrDeliveryTransport{TargetURL: sub.TargetURL, Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if job.EventType != "" {
		req.Header.Set("X-Event-Type", job.EventType)
	}
	if job.Signature != "" {
		req.Header.Set("X-Signature", job.Signature)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ErrDeliveryTransport{TargetURL: sub.TargetURL, Err: err}
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return &code, nil
	}

	return &code, &domain.ErrDeliveryHTTP{TargetURL: sub.TargetURL, StatusCode: code}
}

// classify turns an attempt's result into a log outcome and whether a retry
// should be scheduled.
func classify(attempt int, attemptErr error) (domain.Outcome, bool) {
	if attemptErr == nil {
		return domain.OutcomeSuccess, false
	}
	if attempt < domain.MaxAttempts {
		return domain.OutcomeFailedAttempt, true
	}
	return domain.OutcomeFailure, false
}
