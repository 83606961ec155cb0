package mocks

import (
	"context"

	"github.com/ridloal/storefront-dashboard/internal/product/client"
	"github.com/ridloal/storefront-dashboard/internal/product/domain"
	"github.com/stretchr/testify/mock"
)

type MockProductClient struct {
	mock.Mock
}

func (m *MockProductClient) ListProducts(ctx context.Context, creds client.Credentials) ([]domain.Product, error) {
	args := m.Called(ctx, creds)
	if res := args.Get(0); res != nil {
		return res.([]domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductClient) CreateProduct(ctx context.Context, creds client.Credentials, in domain.Input) (*domain.Product, error) {
	args := m.Called(ctx, creds, in)
	if res := args.Get(0); res != nil {
		return res.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductClient) UpdateProduct(ctx context.Context, creds client.Credentials, id domain.ID, in domain.Input) (*domain.Product, error) {
	args := m.Called(ctx, creds, id, in)
	if res := args.Get(0); res != nil {
		return res.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductClient) DeleteProduct(ctx context.Context, creds client.Credentials, id domain.ID) error {
	args := m.Called(ctx, creds, id)
	return args.Error(0)
}

// StaticCredentials is a fixed token source for tests.
type StaticCredentials struct {
	Token string
	Err   error
}

func (s StaticCredentials) ValidToken(context.Context) (string, error) {
	return s.Token, s.Err
}
