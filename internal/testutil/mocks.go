package testutil

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"

	"github.com/Veraticus/the-spice-must-sync/internal/service"
)

// MockCacheStore is a testify mock of service.CacheStore.
type MockCacheStore struct {
	mock.Mock
}

// GetRecord implements service.CacheStore.
func (m *MockCacheStore) GetRecord(ctx context.Context, userID, key string) ([]byte, bool, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	value, ok := args.Get(0).([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected type for value: %T", args.Get(0))
	}
	return value, args.Bool(1), args.Error(2)
}

// PutRecord implements service.CacheStore.
func (m *MockCacheStore) PutRecord(ctx context.Context, userID, key string, value []byte) error {
	return m.Called(ctx, userID, key, value).Error(0)
}

// DeleteRecord implements service.CacheStore.
func (m *MockCacheStore) DeleteRecord(ctx context.Context, userID, key string) error {
	return m.Called(ctx, userID, key).Error(0)
}

// Close implements service.CacheStore.
func (m *MockCacheStore) Close() error {
	return m.Called().Error(0)
}

var _ service.CacheStore = (*MockCacheStore)(nil)
