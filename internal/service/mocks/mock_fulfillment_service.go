package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) Quote(in service.QuoteInput) (*service.QuoteResult, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QuoteResult), args.Error(1)
}

func (m *MockFulfillmentService) CreateShipment(ctx context.Context, in service.ShipmentInput) (*model.Shipment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockFulfillmentService) Get(ctx context.Context, id string) (*model.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockFulfillmentService) List(ctx context.Context, tenantID string, limit, offset int) (*service.ShipmentListResult, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ShipmentListResult), args.Error(1)
}

func (m *MockFulfillmentService) AdvanceActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
