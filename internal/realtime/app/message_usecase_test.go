package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// 測試 SendMessage 回傳已持久化的訊息並更新 meta（end-to-end 場景）
func TestSendMessage_PersistsAndUpdatesMeta(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	store := newMemoryChannelStore()
	uc := NewMessageUseCase(store)

	msg, err := uc.SendMessage(ctx, "c1", domain.MessageContent{Content: "hi"}, "u1")

	assert.NoError(t, err)
	assert.Equal(t, "c1", msg.ChatID)
	assert.Equal(t, "u1", msg.SenderID)
	assert.Equal(t, "hi", msg.Message)
	assert.Equal(t, "text", msg.Type)
	assert.NotEmpty(t, msg.ID)
	assert.NotEmpty(t, msg.Timestamp)

	messages, err := uc.GetMessages(ctx, "c1", 50)
	assert.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Equal(t, "hi", messages[0].Message)
	assert.Equal(t, "u1", messages[0].SenderID)

	meta := uc.GetConversationMeta(ctx, "c1")
	assert.Equal(t, "hi", meta.LastMessage)
	assert.Equal(t, "u1", meta.LastSenderID)
	assert.Equal(t, msg.Timestamp, meta.LastMessageTime)
}

// 測試 new_message 在 log 寫入後、返回前發布到 chat channel
func TestSendMessage_PublishesNewMessage(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	store := newMemoryChannelStore()
	uc := NewMessageUseCase(store)

	msg, err := uc.SendMessage(ctx, "c1", domain.MessageContent{Content: "hello"}, "u1")
	assert.NoError(t, err)

	events := store.publishedOn(repository.ChatChannel("c1"))
	assert.Len(t, events, 1)
	assert.Equal(t, domain.EventNewMessage, events[0].Type)

	published, ok := events[0].Data.(domain.ChatMessage)
	assert.True(t, ok)
	assert.Equal(t, msg.ID, published.ID)
	assert.Equal(t, "hello", published.Message)
}

// 測試 log 上限：送超過 100 則只留最近 100 則，且輸出為時間順序
func TestMessageLog_BoundedAt100(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	store := newMemoryChannelStore()
	uc := NewMessageUseCase(store)

	total := 105
	for i := 0; i < total; i++ {
		_, err := uc.SendMessage(ctx, "c1", domain.MessageContent{Content: fmt.Sprintf("msg-%d", i)}, "u1")
		assert.NoError(t, err)
	}

	assert.Equal(t, 100, store.listLen(repository.ChatMessagesKey("c1")))

	messages, err := uc.GetMessages(ctx, "c1", 100)
	assert.NoError(t, err)
	assert.Len(t, messages, 100)

	// 最舊的 5 則被 trim 掉，剩下的按時間順序排列
	for i, msg := range messages {
		assert.Equal(t, fmt.Sprintf("msg-%d", i+total-100), msg.Message)
	}
}

// 測試 GetMessages 回傳時間順序（存儲為 newest-first）
func TestGetMessages_Chronological(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	store := newMemoryChannelStore()
	uc := NewMessageUseCase(store)

	for _, content := range []string{"A", "B", "C"} {
		_, err := uc.SendMessage(ctx, "c1", domain.MessageContent{Content: content}, "u1")
		assert.NoError(t, err)
	}

	messages, err := uc.GetMessages(ctx, "c1", 50)
	assert.NoError(t, err)
	assert.Len(t, messages, 3)
	assert.Equal(t, "A", messages[0].Message)
	assert.Equal(t, "B", messages[1].Message)
	assert.Equal(t, "C", messages[2].Message)
}

// 測試空的 chat 回傳空 slice 而不是錯誤
func TestGetMessages_EmptyChat(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	uc := NewMessageUseCase(newMemoryChannelStore())

	messages, err := uc.GetMessages(ctx, uuid.New().String(), 50)
	assert.NoError(t, err)
	assert.Empty(t, messages)
}

// 測試 chat id 為空時直接拒絕
func TestSendMessage_EmptyChatID(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()
	uc := NewMessageUseCase(newMemoryChannelStore())

	_, err := uc.SendMessage(ctx, "", domain.MessageContent{Content: "hi"}, "u1")
	assert.Error(t, err)
}

// 測試 Append 失敗時整個操作中止，不發布也不更新 meta
func TestSendMessage_StoreFailureAborts(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockStore := new(MockChannelStore)
	mockStore.On("Append", ctx, repository.ChatMessagesKey("c1"), mock.Anything).
		Return(errors.New("connection refused"))

	uc := NewMessageUseCase(mockStore)
	_, err := uc.SendMessage(ctx, "c1", domain.MessageContent{Content: "hi"}, "u1")

	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SetField", mock.Anything, mock.Anything, mock.Anything)
	mockStore.AssertExpectations(t)
}

// 測試 meta 讀取失敗時退化為空 meta
func TestGetConversationMeta_Degrades(t *testing.T) {
	logger.SetNewNop()
	ctx := context.Background()

	mockStore := new(MockChannelStore)
	mockStore.On("GetFields", ctx, repository.ChatMetaKey("c1")).
		Return(nil, errors.New("connection refused"))

	uc := NewMessageUseCase(mockStore)
	meta := uc.GetConversationMeta(ctx, "c1")

	assert.Equal(t, domain.ConversationMeta{}, meta)
	mockStore.AssertExpectations(t)
}
