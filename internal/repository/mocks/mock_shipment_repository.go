package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/repository"
)

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, s *model.Shipment) (*model.Shipment, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByID(ctx context.Context, id string) (*model.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) List(ctx context.Context, tenantID string, pq repository.PageQuery) (*repository.PageResult[model.Shipment], error) {
	args := m.Called(ctx, tenantID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Shipment]), args.Error(1)
}

func (m *MockShipmentRepository) ListActive(ctx context.Context, limit int) ([]model.Shipment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
