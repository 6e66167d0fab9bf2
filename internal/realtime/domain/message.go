package domain

import (
	"strconv"
	"time"
)

// ISOLayout 與前端共用的 ISO-8601 時間格式
const ISOLayout = "2006-01-02T15:04:05.000Z"

// ChatMessage 表示一則聊天訊息，存於 per-chat bounded log (head = newest)
type ChatMessage struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	SenderID  string `json:"senderId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// MessageContent 發送訊息的輸入 {content, type}
type MessageContent struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

// ConversationMeta 每個 chat 的摘要，每則新訊息整個覆寫。
// Derived, eventually-consistent summary — not a source of truth.
type ConversationMeta struct {
	LastMessage     string `json:"lastMessage"`
	LastMessageTime string `json:"lastMessageTime"`
	LastSenderID    string `json:"lastSenderId"`
}

// NewEntryID millisecond-derived id. Uniqueness is best effort:
// two sends in the same millisecond may collide.
func NewEntryID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// NowISO current UTC time in ISOLayout
func NowISO() string {
	return time.Now().UTC().Format(ISOLayout)
}
