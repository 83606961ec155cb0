package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context, sid, key string) ([]byte, error) {
	args := m.Called(ctx, sid, key)
	if res := args.Get(0); res != nil {
		return res.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) Set(ctx context.Context, sid, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, sid, key, value, ttl)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, sid, key string) error {
	args := m.Called(ctx, sid, key)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, sid string) error {
	args := m.Called(ctx, sid)
	return args.Error(0)
}

func (m *MockSessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}
