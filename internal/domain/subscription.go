package domain

//go:generate mockgen -destination mocks/mock_subscription_repository.go -package mocks github.com/webhookrelay/relay/internal/domain SubscriptionRepository

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
)

// Subscription is a registered target endpoint that receives webhooks.
type Subscription struct {
	ID        string    `json:"id"`
	TargetURL string    `json:"target_url"`
	Secret    string    `json:"secret,omitempty"`
	Events    []string  `json:"events,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CacheProjection is the subset of a subscription's fields cached by C2,
// keyed by id.
type CacheProjection struct {
	ID        string   `json:"id"`
	TargetURL string   `json:"target_url"`
	Secret    string   `json:"secret,omitempty"`
	Events    []string `json:"events,omitempty"`
}

// Projection returns the cache-facing view of the subscription.
func (s *Subscription) Projection() CacheProjection {
	return CacheProjection{
		ID:        s.ID,
		TargetURL: s.TargetURL,
		Secret:    s.Secret,
		Events:    s.Events,
	}
}

// Validate checks that the subscription is well formed before it is
// persisted. TargetURL must be an absolute http(s) URL.
func (s *Subscription) Validate() error {
	if strings.TrimSpace(s.TargetURL) == "" {
		return NewValidationError("target_url is required")
	}

	if !govalidator.IsRequestURL(s.TargetURL) || !govalidator.IsURL(s.TargetURL) {
		return NewValidationError("target_url must be a well-formed URL")
	}

	u, err := url.ParseRequestURI(s.TargetURL)
	if err != nil {
		return NewValidationError("target_url must be a well-formed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewValidationError("target_url must use http or https")
	}

	return nil
}

// SubscriptionUpdate carries the partial fields accepted by a PATCH.
// Nil fields are left unchanged.
type SubscriptionUpdate struct {
	TargetURL *string
	Secret    *string
	Events    []string
	EventsSet bool // distinguishes "events not supplied" from "events cleared"
}

// Apply merges the update onto the subscription in place.
func (u *SubscriptionUpdate) Apply(sub *Subscription) {
	if u.TargetURL != nil {
		sub.TargetURL = *u.TargetURL
	}
	if u.Secret != nil {
		sub.Secret = *u.Secret
	}
	if u.EventsSet {
		sub.Events = u.Events
	}
}

// SubscriptionRepository defines durable storage access for subscriptions (C1).
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, skip, limit int) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
}
