package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/service"
)

type MockAssetService struct {
	mock.Mock
}

func (m *MockAssetService) Upload(ctx context.Context, tenantID string, r io.Reader, originalFilename, contentType string, size int64) (*model.ContentAsset, error) {
	args := m.Called(ctx, tenantID, r, originalFilename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContentAsset), args.Error(1)
}

func (m *MockAssetService) Download(ctx context.Context, id string) (*service.AssetDownload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AssetDownload), args.Error(1)
}

func (m *MockAssetService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
