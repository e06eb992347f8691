package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

type MockAssetRepository struct {
	mock.Mock
}

func (m *MockAssetRepository) Create(ctx context.Context, a *model.ContentAsset) (*model.ContentAsset, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentAsset), args.Error(1)
}

func (m *MockAssetRepository) FindByID(ctx context.Context, id string) (*model.ContentAsset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentAsset), args.Error(1)
}

func (m *MockAssetRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
