package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	errprocess "github.com/B25-sm/clicktosell-sub002/pkg/err"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"go.uber.org/zap"
)

const (
	// chatLogCap 每個 chat 最多保留 100 則訊息
	chatLogCap = 100
	// defaultMessageLimit getMessages 預設讀取筆數
	defaultMessageLimit = 50
)

// MessageUseCase 負責聊天訊息的 bounded log、推播與 conversation meta
type MessageUseCase struct {
	store repository.ChannelStore
}

// NewMessageUseCase init message use case
func NewMessageUseCase(store repository.ChannelStore) *MessageUseCase {
	return &MessageUseCase{store: store}
}

// SendMessage append a message to the conversation log, publish new_message,
// then overwrite the conversation meta. The publish happens only after the
// log write and before returning; the caller gets the persisted message.
// Any store failure aborts and surfaces. Log and meta writes are not
// transactional — a failure in between leaves the meta stale, not wrong-sized.
func (uc *MessageUseCase) SendMessage(ctx context.Context, chatID string, content domain.MessageContent, senderID string) (*domain.ChatMessage, error) {
	if chatID == "" {
		return nil, errprocess.Set("send message: chat id is required")
	}

	msgType := content.Type
	if msgType == "" {
		msgType = "text"
	}

	msg := domain.ChatMessage{
		ID:        domain.NewEntryID(),
		ChatID:    chatID,
		SenderID:  senderID,
		Message:   content.Content,
		Timestamp: domain.NowISO(),
		Type:      msgType,
	}

	key := repository.ChatMessagesKey(chatID)
	if err := uc.store.Append(ctx, key, msg); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send message: failed to store message: %v", err))
	}
	if err := uc.store.Trim(ctx, key, 0, chatLogCap-1); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send message: failed to trim log: %v", err))
	}

	event := domain.Event{Type: domain.EventNewMessage, Data: msg}
	if err := uc.store.Publish(ctx, repository.ChatChannel(chatID), event); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send message: failed to publish: %v", err))
	}

	if err := uc.store.SetField(ctx, repository.ChatMetaKey(chatID), map[string]interface{}{
		"lastMessage":     msg.Message,
		"lastMessageTime": msg.Timestamp,
		"lastSenderId":    msg.SenderID,
	}); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send message: failed to update meta: %v", err))
	}

	return &msg, nil
}

// GetMessages read the most recent limit messages, oldest first.
// 存儲為 newest-first，讀取後反轉成時間順序。空的 chat 回傳空 slice。
func (uc *MessageUseCase) GetMessages(ctx context.Context, chatID string, limit int64) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}

	raw, err := uc.store.Range(ctx, repository.ChatMessagesKey(chatID), 0, limit-1)
	if err != nil {
		return nil, errprocess.Set(fmt.Sprintf("get messages: failed to read log: %v", err))
	}

	messages := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			logger.Log.Error("get messages: skip corrupt entry",
				zap.String("chatId", chatID),
				zap.String("err", err.Error()))
			continue
		}
		messages = append(messages, msg)
	}

	// 反轉成 oldest-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// GetConversationMeta read the conversation summary. Advisory, derived data:
// read failures degrade to an empty meta instead of propagating.
func (uc *MessageUseCase) GetConversationMeta(ctx context.Context, chatID string) domain.ConversationMeta {
	fields, err := uc.store.GetFields(ctx, repository.ChatMetaKey(chatID))
	if err != nil {
		logger.Log.Warn("get conversation meta degraded",
			zap.String("chatId", chatID),
			zap.String("err", err.Error()))
		return domain.ConversationMeta{}
	}

	return domain.ConversationMeta{
		LastMessage:     fields["lastMessage"],
		LastMessageTime: fields["lastMessageTime"],
		LastSenderID:    fields["lastSenderId"],
	}
}
