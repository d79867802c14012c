package http

import (
	"context"
	"net/http"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

// deliveryLogReader is the read-only C1 projection surface C7 needs.
type deliveryLogReader interface {
	CountByWebhookID(ctx context.Context, webhookID string) (int, error)
	ListByWebhookID(ctx context.Context, webhookID string, limit int) ([]*domain.DeliveryLog, error)
	ListBySubscriptionID(ctx context.Context, subscriptionID string, limit int) ([]*domain.DeliveryLog, error)
}

const (
	recentAttemptsLimit     = 20
	defaultAttemptsLimit    = 20
	maxSubscriptionAttempts = 100
)

// StatusHandler serves GET /status/{webhook_id} and
// GET /subscriptions/{id}/attempts (C7).
type StatusHandler struct {
	logs   deliveryLogReader
	logger logger.Logger
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(logs deliveryLogReader, log logger.Logger) *StatusHandler {
	return &StatusHandler{logs: logs, logger: log}
}

// WebhookStatus handles GET /status/{webhook_id}.
func (h *StatusHandler) WebhookStatus(w http.ResponseWriter, r *http.Request) {
	webhookID, ok := parseUUIDParam(w, r, "webhook_id")
	if !ok {
		return
	}

	ctx := r.Context()

	total, err := h.logs.CountByWebhookID(ctx, webhookID)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to count delivery logs")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if total == 0 {
		WriteJSONError(w, "webhook not found", http.StatusNotFound)
		return
	}

	recent, err := h.logs.ListByWebhookID(ctx, webhookID, recentAttemptsLimit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list delivery logs")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var last *domain.DeliveryLog
	if len(recent) > 0 {
		last = recent[0]
	}

	resp := domain.StatusResponse{
		WebhookID:      webhookID,
		TotalAttempts:  total,
		RecentAttempts: recent,
	}
	if last != nil {
		resp.SubscriptionID = last.SubscriptionID
		resp.FinalOutcome = last.Outcome
		resp.LastAttemptAt = last.Timestamp
		resp.LastStatusCode = last.StatusCode
		resp.Error = last.Error
	}

	writeJSON(w, http.StatusOK, resp)
}

// SubscriptionAttempts handles GET /subscriptions/{id}/attempts.
func (h *StatusHandler) SubscriptionAttempts(w http.ResponseWriter, r *http.Request) {
	subscriptionID, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", defaultAttemptsLimit)
	if limit <= 0 || limit > maxSubscriptionAttempts {
		limit = defaultAttemptsLimit
	}

	logs, err := h.logs.ListBySubscriptionID(r.Context(), subscriptionID, limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list delivery logs")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if logs == nil {
		logs = []*domain.DeliveryLog{}
	}

	writeJSON(w, http.StatusOK, logs)
}
