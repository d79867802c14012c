package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/pkg/logger"
)

// subscriptionCache is the narrow surface SubscriptionService needs from C2's
// get_or_load read path and write-through/invalidate maintenance.
type subscriptionCache interface {
	GetOrLoad(ctx context.Context, id string) (*domain.CacheProjection, error)
	Put(ctx context.Context, sub *domain.Subscription) error
	Invalidate(ctx context.Context, id string) error
}

// SubscriptionService implements C8: subscription CRUD with cache coherence
// against C2. Every write goes to C1 first, then refreshes or invalidates C2.
type SubscriptionService struct {
	repo   domain.SubscriptionRepository
	cache  subscriptionCache
	logger logger.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo domain.SubscriptionRepository, cache subscriptionCache, log logger.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, cache: cache, logger: log}
}

// Create validates, persists, and writes through to the cache.
func (s *SubscriptionService) Create(ctx context.Context, sub *domain.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	if err := sub.Validate(); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return err
	}

	if err := s.cache.Put(ctx, sub); err != nil {
		s.logger.WithField("error", err.Error()).Warn("failed to write through subscription cache")
	}

	s.logger.WithField("subscription_id", sub.ID).Info("created subscription")

	return nil
}

// GetByID resolves a subscription via C2.get_or_load, returning
// *domain.ErrNotFound when no such subscription exists in the store.
func (s *SubscriptionService) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	proj, err := s.cache.GetOrLoad(ctx, id)
	if err != nil {
		return nil, err
	}
	if proj == nil {
		return nil, &domain.ErrNotFound{Entity: "subscription", ID: id}
	}

	return &domain.Subscription{
		ID:        proj.ID,
		TargetURL: proj.TargetURL,
		Secret:    proj.Secret,
		Events:    proj.Events,
	}, nil
}

// List performs a straight paginated read from the store. The cache is
// deliberately bypassed: list is rarely used and the cache may not hold
// every row.
func (s *SubscriptionService) List(ctx context.Context, skip, limit int) ([]*domain.Subscription, error) {
	return s.repo.List(ctx, skip, limit)
}

// Update loads the current row, applies the partial update, persists, and
// writes through to the cache.
func (s *SubscriptionService) Update(ctx context.Context, id string, update domain.SubscriptionUpdate) (*domain.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(sub)

	if err := sub.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, sub); err != nil {
		s.logger.WithField("error", err.Error()).Warn("failed to write through subscription cache")
	}

	s.logger.WithField("subscription_id", sub.ID).Info("updated subscription")

	return sub, nil
}

// Delete removes the row and invalidates the cache entry.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WithField("error", err.Error()).Warn("failed to invalidate subscription cache")
	}

	s.logger.WithField("subscription_id", id).Info("deleted subscription")

	return nil
}
