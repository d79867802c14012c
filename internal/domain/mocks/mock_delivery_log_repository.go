package mocks

import (
	"context"
	"reflect"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/webhookrelay/relay/internal/domain"
)

// MockDeliveryLogRepository is a mock of DeliveryLogRepository interface
type MockDeliveryLogRepository struct {
	ctrl     *gomock.Controller
	recorder *MockDeliveryLogRepositoryMockRecorder
}

// MockDeliveryLogRepositoryMockRecorder is the mock recorder for MockDeliveryLogRepository
type MockDeliveryLogRepositoryMockRecorder struct {
	mock *MockDeliveryLogRepository
}

// NewMockDeliveryLogRepository creates a new mock instance
func NewMockDeliveryLogRepository(ctrl *gomock.Controller) *MockDeliveryLogRepository {
	mock := &MockDeliveryLogRepository{ctrl: ctrl}
	mock.recorder = &MockDeliveryLogRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockDeliveryLogRepository) EXPECT() *MockDeliveryLogRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method
func (m *MockDeliveryLogRepository) Create(ctx context.Context, log *domain.DeliveryLog) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, log)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create
func (mr *MockDeliveryLogRepositoryMockRecorder) Create(ctx, log interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockDeliveryLogRepository)(nil).Create), ctx, log)
}

// CountByWebhookID mocks base method
func (m *MockDeliveryLogRepository) CountByWebhookID(ctx context.Context, webhookID string) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CountByWebhookID", ctx, webhookID)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CountByWebhookID indicates an expected call of CountByWebhookID
func (mr *MockDeliveryLogRepositoryMockRecorder) CountByWebhookID(ctx, webhookID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CountByWebhookID", reflect.TypeOf((*MockDeliveryLogRepository)(nil).CountByWebhookID), ctx, webhookID)
}

// ListByWebhookID mocks base method
func (m *MockDeliveryLogRepository) ListByWebhookID(ctx context.Context, webhookID string, limit int) ([]*domain.DeliveryLog, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByWebhookID", ctx, webhookID, limit)
	ret0, _ := ret[0].([]*domain.DeliveryLog)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByWebhookID indicates an expected call of ListByWebhookID
func (mr *MockDeliveryLogRepositoryMockRecorder) ListByWebhookID(ctx, webhookID, limit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByWebhookID", reflect.TypeOf((*MockDeliveryLogRepository)(nil).ListByWebhookID), ctx, webhookID, limit)
}

// ListBySubscriptionID mocks base method
func (m *MockDeliveryLogRepository) ListBySubscriptionID(ctx context.Context, subscriptionID string, limit int) ([]*domain.DeliveryLog, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListBySubscriptionID", ctx, subscriptionID, limit)
	ret0, _ := ret[0].([]*domain.DeliveryLog)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListBySubscriptionID indicates an expected call of ListBySubscriptionID
func (mr *MockDeliveryLogRepositoryMockRecorder) ListBySubscriptionID(ctx, subscriptionID, limit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListBySubscriptionID", reflect.TypeOf((*MockDeliveryLogRepository)(nil).ListBySubscriptionID), ctx, subscriptionID, limit)
}

// DeleteOlderThan mocks base method
func (m *MockDeliveryLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteOlderThan", ctx, cutoff)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteOlderThan indicates an expected call of DeleteOlderThan
func (mr *MockDeliveryLogRepositoryMockRecorder) DeleteOlderThan(ctx, cutoff interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteOlderThan", reflect.TypeOf((*MockDeliveryLogRepository)(nil).DeleteOlderThan), ctx, cutoff)
}
