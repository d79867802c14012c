package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

// subscriptionStore is the persistence+cache-coherence surface the handler
// needs from the subscription service (C8).
type subscriptionStore interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	GetByID(ctx context.Context, id string) (*domain.Subscription, error)
	List(ctx context.Context, skip, limit int) ([]*domain.Subscription, error)
	Update(ctx context.Context, id string, update domain.SubscriptionUpdate) (*domain.Subscription, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionHandler serves the /subscriptions/ REST surface (C8).
type SubscriptionHandler struct {
	store  subscriptionStore
	logger logger.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(store subscriptionStore, log logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{store: store, logger: log}
}

type createSubscriptionRequest struct {
	TargetURL string   `json:"target_url"`
	Secret    string   `json:"secret,omitempty"`
	Events    []string `json:"events,omitempty"`
}

type patchSubscriptionRequest struct {
	TargetURL *string  `json:"target_url"`
	Secret    *string  `json:"secret"`
	Events    []string `json:"events"`
}

// subscriptionResponse is the REST-facing view of a subscription: exactly
// C2's cache projection fields, with no timestamps. GetByID is served from
// the cache (which never carries created_at/updated_at), so the response
// shape must exclude them everywhere else too, or create and get bodies
// for the same subscription would disagree.
type subscriptionResponse struct {
	ID        string   `json:"id"`
	TargetURL string   `json:"target_url"`
	Secret    string   `json:"secret,omitempty"`
	Events    []string `json:"events,omitempty"`
}

func newSubscriptionResponse(sub *domain.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:        sub.ID,
		TargetURL: sub.TargetURL,
		Secret:    sub.Secret,
		Events:    sub.Events,
	}
}

func newSubscriptionResponseList(subs []*domain.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		out[i] = newSubscriptionResponse(sub)
	}
	return out
}

// Create handles POST /subscriptions/.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONValidationErrors(w, []string{"invalid json body"})
		return
	}

	sub := &domain.Subscription{
		TargetURL: req.TargetURL,
		Secret:    req.Secret,
		Events:    req.Events,
	}

	if err := h.store.Create(r.Context(), sub); err != nil {
		if _, ok := err.(domain.ValidationError); ok {
			WriteJSONValidationErrors(w, []string{err.Error()})
			return
		}
		h.logger.WithField("error", err.Error()).Error("failed to create subscription")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, newSubscriptionResponse(sub))
}

// Get handles GET /subscriptions/{id}.
func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	sub, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.handleLookupError(w, err, "subscription")
		return
	}

	writeJSON(w, http.StatusOK, newSubscriptionResponse(sub))
}

// List handles GET /subscriptions/.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := parseIntQuery(r, "skip", 0)
	limit := parseIntQuery(r, "limit", 100)

	subs, err := h.store.List(r.Context(), skip, limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("failed to list subscriptions")
		WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, newSubscriptionResponseList(subs))
}

// Update handles PATCH /subscriptions/{id}.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	var req patchSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONValidationErrors(w, []string{"invalid json body"})
		return
	}

	update := domain.SubscriptionUpdate{
		TargetURL: req.TargetURL,
		Secret:    req.Secret,
		Events:    req.Events,
		EventsSet: req.Events != nil,
	}

	sub, err := h.store.Update(r.Context(), id, update)
	if err != nil {
		if _, ok := err.(domain.ValidationError); ok {
			WriteJSONValidationErrors(w, []string{err.Error()})
			return
		}
		h.handleLookupError(w, err, "subscription")
		return
	}

	writeJSON(w, http.StatusOK, newSubscriptionResponse(sub))
}

// Delete handles DELETE /subscriptions/{id}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.handleLookupError(w, err, "subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SubscriptionHandler) handleLookupError(w http.ResponseWriter, err error, entity string) {
	if _, ok := err.(*domain.ErrNotFound); ok {
		WriteJSONError(w, entity+" not found", http.StatusNotFound)
		return
	}
	h.logger.WithField("error", err.Error()).Error("unexpected error")
	WriteJSONError(w, "internal server error", http.StatusInternalServerError)
}

func parseIntQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		WriteJSONValidationErrors(w, []string{name + " must be a valid UUID"})
		return "", false
	}
	return id, true
}
