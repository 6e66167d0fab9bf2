package app

import (
	"context"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"

	"github.com/stretchr/testify/mock"
)

// MockChannelStore Mock ChannelStore
type MockChannelStore struct {
	mock.Mock
}

// Append moke list head push
func (m *MockChannelStore) Append(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Trim moke list trim
func (m *MockChannelStore) Trim(ctx context.Context, key string, start, stop int64) error {
	args := m.Called(ctx, key, start, stop)
	return args.Error(0)
}

// Range moke list read
func (m *MockChannelStore) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	args := m.Called(ctx, key, start, stop)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// SetAt moke list rewrite by index
func (m *MockChannelStore) SetAt(ctx context.Context, key string, index int64, value interface{}) error {
	args := m.Called(ctx, key, index, value)
	return args.Error(0)
}

// SetField moke hash write
func (m *MockChannelStore) SetField(ctx context.Context, key string, fields map[string]interface{}) error {
	args := m.Called(ctx, key, fields)
	return args.Error(0)
}

// GetFields moke hash read
func (m *MockChannelStore) GetFields(ctx context.Context, key string) (map[string]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(map[string]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// Increment moke counter increment
func (m *MockChannelStore) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// GetCounter moke counter read
func (m *MockChannelStore) GetCounter(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// Publish moke publisher
func (m *MockChannelStore) Publish(ctx context.Context, channel string, event domain.Event) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

// Subscribe moke subscriber
func (m *MockChannelStore) Subscribe(ctx context.Context, channel string, handler func(domain.Event)) (repository.Subscription, error) {
	args := m.Called(ctx, channel, handler)
	if args.Get(0) != nil {
		return args.Get(0).(repository.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

// RecordForSuggestions moke suggestion feed
func (m *MockChannelStore) RecordForSuggestions(ctx context.Context, query string) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

// TopSuggestions moke suggestion read
func (m *MockChannelStore) TopSuggestions(ctx context.Context, limit int64) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSubscription Mock Subscription
type MockSubscription struct {
	mock.Mock
}

// Close moke subscription close
func (m *MockSubscription) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAnalyticsSink Mock AnalyticsSink
type MockAnalyticsSink struct {
	mock.Mock
}

// Emit moke analytics emit
func (m *MockAnalyticsSink) Emit(ctx context.Context, key string, payload interface{}) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

// MockPresenceRepository Mock RedisRepository[domain.PresenceRecord]
type MockPresenceRepository struct {
	mock.Mock
}

// Set moke presence write
func (m *MockPresenceRepository) Set(ctx context.Context, key string, value domain.PresenceRecord, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Get moke presence read
func (m *MockPresenceRepository) Get(ctx context.Context, key string) (domain.PresenceRecord, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(domain.PresenceRecord), args.Error(1)
}

// Del moke presence delete
func (m *MockPresenceRepository) Del(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// GetTTL moke presence ttl read
func (m *MockPresenceRepository) GetTTL(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

// ExtendTTL moke presence ttl extend
func (m *MockPresenceRepository) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	args := m.Called(ctx, key, ttl)
	return args.Error(0)
}
