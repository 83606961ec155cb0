package mocks

import (
	"context"

	"github.com/ridloal/storefront-dashboard/internal/catalog/domain"
	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, e domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}
