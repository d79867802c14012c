package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

// subscriptionResolver is the C2 get_or_load surface the ingestion handler
// needs to resolve a subscription id.
type subscriptionResolver interface {
	GetOrLoad(ctx context.Context, id string) (*domain.CacheProjection, error)
}

// jobEnqueuer is the C3 surface the ingestion handler needs to hand off the
// first attempt.
type jobEnqueuer interface {
	Enqueue(ctx context.Context, job domain.DeliveryJob) error
}

// IngestHandler serves POST /ingest/{subscription_id} (C4).
type IngestHandler struct {
	resolver subscriptionResolver
	queue    jobEnqueuer
	logger   logger.Logger
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(resolver subscriptionResolver, queue jobEnqueuer, log logger.Logger) *IngestHandler {
	return &IngestHandler{resolver: resolver, queue: queue, logger: log}
}

type ingestResponse struct {
	WebhookID string `json:"webhook_id"`
}

// Ingest handles POST /ingest/{subscription_id}.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := parseUUIDParam(w, r, "subscription_id")
	if !ok {
		return
	}

	proj, err := h.resolver.GetOrLoad(r.Context(), subscriptionID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to resolve subscription")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if proj == nil {
		WriteJSONError(w, "Subscription not found", http.StatusNotFound)
		return
	}

	var payload interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteJSONError(w, "invalid json body", http.StatusBadRequest)
		return
	}

	job := domain.DeliveryJob{
		WebhookID:      uuid.NewString(),
		SubscriptionID: subscriptionID,
		Payload:        payload,
		EventType:      r.Header.Get("X-Event-Type"),
		Signature:      r.Header.Get("X-Signature"),
		Attempt:        1,
	}

	if err := h.queue.Enqueue(r.Context(), job); err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to enqueue delivery job")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{WebhookID: job.WebhookID})
}
