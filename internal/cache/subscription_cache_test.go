package cache

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhookrelay/relay/internal/domain"
	"github.com/webhookrelay/relay/internal/domain/mocks"
)

func TestSubscriptionCache_GetOrLoad_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockCache(ctrl)
	mockRepo := mocks.NewMockSubscriptionRepository(ctrl)
	sc := NewSubscriptionCache(mockCache, mockRepo)

	proj := &domain.CacheProjection{ID: "sub-1", TargetURL: "https://example.com/hook"}
	mockCache.EXPECT().Get(gomock.Any(), "sub-1").Return(proj, nil)

	got, err := sc.GetOrLoad(context.Background(), "sub-1")

	require.NoError(t, err)
	assert.Equal(t, proj, got)
}

func TestSubscriptionCache_GetOrLoad_MissFallsBackToStoreAndWritesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockCache(ctrl)
	mockRepo := mocks.NewMockSubscriptionRepository(ctrl)
	sc := NewSubscriptionCache(mockCache, mockRepo)

	sub := &domain.Subscription{ID: "sub-1", TargetURL: "https://example.com/hook"}

	mockCache.EXPECT().Get(gomock.Any(), "sub-1").Return(nil, nil)
	mockRepo.EXPECT().GetByID(gomock.Any(), "sub-1").Return(sub, nil)
	mockCache.EXPECT().Put(gomock.Any(), sub).Return(nil)

	got, err := sc.GetOrLoad(context.Background(), "sub-1")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sub-1", got.ID)
}

func TestSubscriptionCache_GetOrLoad_AbsentFromStoreReturnsNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockCache(ctrl)
	mockRepo := mocks.NewMockSubscriptionRepository(ctrl)
	sc := NewSubscriptionCache(mockCache, mockRepo)

	mockCache.EXPECT().Get(gomock.Any(), "missing").Return(nil, nil)
	mockRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, &domain.ErrNotFound{Entity: "subscription", ID: "missing"})

	got, err := sc.GetOrLoad(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, got)
}
