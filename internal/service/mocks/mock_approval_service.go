package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

type MockApprovalService struct {
	mock.Mock
}

func (m *MockApprovalService) Submit(ctx context.Context, in service.SubmitInput) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalService) Get(ctx context.Context, id string) (*model.ApprovalRequest, []model.ApprovalEvent, error) {
	args := m.Called(ctx, id)
	var req *model.ApprovalRequest
	if args.Get(0) != nil {
		req = args.Get(0).(*model.ApprovalRequest)
	}
	var events []model.ApprovalEvent
	if args.Get(1) != nil {
		events = args.Get(1).([]model.ApprovalEvent)
	}
	return req, events, args.Error(2)
}

func (m *MockApprovalService) List(ctx context.Context, tenantID string, state model.ApprovalState, limit, offset int) (*service.ApprovalListResult, error) {
	args := m.Called(ctx, tenantID, state, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApprovalListResult), args.Error(1)
}

func (m *MockApprovalService) StartReview(ctx context.Context, id, actor string) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalService) Decide(ctx context.Context, id string, d service.Decision) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, id, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalService) Escalate(ctx context.Context, id, actor, note string) (*model.ApprovalRequest, error) {
	args := m.Called(ctx, id, actor, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalService) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
