package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試從未出現過的 user 視為 offline 且 lastSeen 為 null
func TestGetPresence_NeverSeenIsOffline(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	uc := NewPresenceUseCase(newMemoryPresenceRepo(), newMemoryChannelStore())

	record := uc.GetPresence(ctx, "ghost")

	assert.Equal(t, domain.PresenceOffline, record.Status)
	assert.Nil(t, record.LastSeen)
}

// 測試 set 之後可以讀回 online 狀態與近期的 lastSeen
func TestSetPresence_ThenGet(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	uc := NewPresenceUseCase(newMemoryPresenceRepo(), newMemoryChannelStore())

	written, err := uc.SetPresence(ctx, "u1", "")
	assert.NoError(t, err)
	assert.Equal(t, domain.PresenceOnline, written.Status)

	record := uc.GetPresence(ctx, "u1")
	assert.Equal(t, domain.PresenceOnline, record.Status)
	assert.NotNil(t, record.LastSeen)

	lastSeen, err := time.Parse(domain.ISOLayout, *record.LastSeen)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), lastSeen, 5*time.Second)
}

// 測試狀態轉換會發布 user_presence 到 presence channel
func TestSetPresence_PublishesTransition(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	store := newMemoryChannelStore()
	uc := NewPresenceUseCase(newMemoryPresenceRepo(), store)

	_, err := uc.SetPresence(ctx, "u1", domain.PresenceOnline)
	assert.NoError(t, err)

	events := store.publishedOn(repository.PresenceChannel)
	assert.Len(t, events, 1)
	assert.Equal(t, domain.EventUserPresence, events[0].Type)
	assert.Equal(t, "u1", events[0].UserID)

	published, ok := events[0].Data.(domain.PresenceRecord)
	assert.True(t, ok)
	assert.Equal(t, domain.PresenceOnline, published.Status)
}

// 測試顯式 offline 一樣寫入 record（帶 TTL），讀回時仍是 offline
func TestSetPresence_ExplicitOfflineStored(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	uc := NewPresenceUseCase(newMemoryPresenceRepo(), newMemoryChannelStore())

	_, err := uc.SetPresence(ctx, "u1", domain.PresenceOffline)
	assert.NoError(t, err)

	record := uc.GetPresence(ctx, "u1")
	assert.Equal(t, domain.PresenceOffline, record.Status)
	// 顯式 offline 保留 lastSeen，key 過期後才退化成 null
	assert.NotNil(t, record.LastSeen)
}

// 測試 store 讀取失敗時退化為 offline 而不是回傳錯誤
func TestGetPresence_StoreErrorDegrades(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockRepo := new(MockPresenceRepository)
	mockRepo.On("Get", ctx, repository.PresenceKey("u1")).
		Return(domain.PresenceRecord{}, errors.New("connection refused"))

	uc := NewPresenceUseCase(mockRepo, newMemoryChannelStore())
	record := uc.GetPresence(ctx, "u1")

	assert.Equal(t, domain.PresenceOffline, record.Status)
	assert.Nil(t, record.LastSeen)
	mockRepo.AssertExpectations(t)
}

// 測試寫入失敗時錯誤會傳遞給 caller，且不會發布事件
func TestSetPresence_StoreErrorPropagates(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockRepo := new(MockPresenceRepository)
	mockRepo.On("Set", ctx, repository.PresenceKey("u1"), mock.Anything, presenceTTL).
		Return(errors.New("connection refused"))

	mockStore := new(MockChannelStore)
	uc := NewPresenceUseCase(mockRepo, mockStore)

	_, err := uc.SetPresence(ctx, "u1", domain.PresenceOnline)
	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// 測試 record 過期後 GetPresence 退化為 offline / lastSeen null
func TestGetPresence_ExpiredRecordIsOffline(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	repo := newMemoryPresenceRepo()
	uc := NewPresenceUseCase(repo, newMemoryChannelStore())

	// 直接塞一筆已過期的 record 模擬超過 300 秒沒有 keepalive
	now := domain.NowISO()
	expired := domain.PresenceRecord{Status: domain.PresenceOnline, LastSeen: &now, Timestamp: now}
	err := repo.Set(ctx, repository.PresenceKey("u1"), expired, -time.Second)
	assert.NoError(t, err)

	record := uc.GetPresence(ctx, "u1")
	assert.Equal(t, domain.PresenceOffline, record.Status)
	assert.Nil(t, record.LastSeen)
}
