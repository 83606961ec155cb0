package mocks

import (
	"context"

	"github.com/ridloal/storefront-dashboard/internal/session/domain"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	args := m.Called(ctx, req)
	if res := args.Get(0); res != nil {
		return res.(*domain.LoginResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
