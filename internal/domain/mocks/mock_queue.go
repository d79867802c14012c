package mocks

import (
	"context"
	"reflect"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/webhookrelay/relay/internal/domain"
)

// MockQueue is a mock of Queue interface
type MockQueue struct {
	ctrl     *gomock.Controller
	recorder *MockQueueMockRecorder
}

// MockQueueMockRecorder is the mock recorder for MockQueue
type MockQueueMockRecorder struct {
	mock *MockQueue
}

// NewMockQueue creates a new mock instance
func NewMockQueue(ctrl *gomock.Controller) *MockQueue {
	mock := &MockQueue{ctrl: ctrl}
	mock.recorder = &MockQueueMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockQueue) EXPECT() *MockQueueMockRecorder {
	return m.recorder
}

// Enqueue mocks base method
func (m *MockQueue) Enqueue(ctx context.Context, job domain.DeliveryJob) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Enqueue", ctx, job)
	ret0, _ := ret[0].(error)
	return ret0
}

// Enqueue indicates an expected call of Enqueue
func (mr *MockQueueMockRecorder) Enqueue(ctx, job interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Enqueue", reflect.TypeOf((*MockQueue)(nil).Enqueue), ctx, job)
}

// EnqueueIn mocks base method
func (m *MockQueue) EnqueueIn(ctx context.Context, delay time.Duration, job domain.DeliveryJob) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "EnqueueIn", ctx, delay, job)
	ret0, _ := ret[0].(error)
	return ret0
}

// EnqueueIn indicates an expected call of EnqueueIn
func (mr *MockQueueMockRecorder) EnqueueIn(ctx, delay, job interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "EnqueueIn", reflect.TypeOf((*MockQueue)(nil).EnqueueIn), ctx, delay, job)
}

// Dequeue mocks base method
func (m *MockQueue) Dequeue(ctx context.Context, timeout time.Duration) (*domain.DeliveryJob, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Dequeue", ctx, timeout)
	ret0, _ := ret[0].(*domain.DeliveryJob)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Dequeue indicates an expected call of Dequeue
func (mr *MockQueueMockRecorder) Dequeue(ctx, timeout interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Dequeue", reflect.TypeOf((*MockQueue)(nil).Dequeue), ctx, timeout)
}

// CountReady mocks base method
func (m *MockQueue) CountReady(ctx context.Context) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CountReady", ctx)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CountReady indicates an expected call of CountReady
func (mr *MockQueueMockRecorder) CountReady(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CountReady", reflect.TypeOf((*MockQueue)(nil).CountReady), ctx)
}
