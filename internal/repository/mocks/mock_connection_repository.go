package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Upsert(ctx context.Context, conn *model.IntegrationConnection) (*model.IntegrationConnection, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntegrationConnection), args.Error(1)
}

func (m *MockConnectionRepository) FindByTenantVendor(ctx context.Context, tenantID, vendor string) (*model.IntegrationConnection, error) {
	args := m.Called(ctx, tenantID, vendor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IntegrationConnection), args.Error(1)
}

func (m *MockConnectionRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	args := m.Called(ctx, id, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}
