package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) Analyze(ctx context.Context, vendor, operation string, businessResult map[string]any) map[string]any {
	args := m.Called(ctx, vendor, operation, businessResult)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(map[string]any)
}
