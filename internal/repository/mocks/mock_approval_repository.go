package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

type MockApprovalRepository struct {
	mock.Mock
}

func (m *MockApprovalRepository) Create(ctx context.Context, req *model.ApprovalRequest) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) FindByID(ctx context.Context, id string) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) List(ctx context.Context, tenantID string, state model.ApprovalState, pq repository.PageQuery) (*repository.PageResult[model.ApprovalRequest], error) {
	args := m.Called(ctx, tenantID, state, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ApprovalRequest]), args.Error(1)
}

func (m *MockApprovalRepository) UpdateState(ctx context.Context, id string, fromStates []model.ApprovalState, to model.ApprovalState) error {
	args := m.Called(ctx, id, fromStates, to)
	return args.Error(0)
}

func (m *MockApprovalRepository) ListPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.ApprovalRequest, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) AppendEvent(ctx context.Context, ev *model.ApprovalEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockApprovalRepository) Events(ctx context.Context, requestID string) ([]model.ApprovalEvent, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApprovalEvent), args.Error(1)
}
