package http

import (
	"net/http"
)

// NewRouter wires the subscription, ingestion, and status handlers onto a
// single mux using Go's method+path pattern matching.
func NewRouter(subs *SubscriptionHandler, ingest *IngestHandler, status *StatusHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /subscriptions/", subs.Create)
	mux.HandleFunc("GET /subscriptions/", subs.List)
	mux.HandleFunc("GET /subscriptions/{id}", subs.Get)
	mux.HandleFunc("PATCH /subscriptions/{id}", subs.Update)
	mux.HandleFunc("DELETE /subscriptions/{id}", subs.Delete)
	mux.HandleFunc("GET /subscriptions/{id}/attempts", status.SubscriptionAttempts)

	mux.HandleFunc("POST /ingest/{subscription_id}", ingest.Ingest)

	mux.HandleFunc("GET /status/{webhook_id}", status.WebhookStatus)

	return mux
}
