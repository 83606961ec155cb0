package mocks

import (
	"context"

	"github.com/ridloal/storefront-dashboard/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Purchase(ctx context.Context, p domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
