package repository

import (
	"context"
	"fmt"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
)

// Key / channel layout. Lists are head-newest bounded logs, counters are
// plain INCR keys, meta is a hash. Presence records live under their own
// TTL keys through database.RedisRepository.
const (
	// SearchLogKey the single global search log
	SearchLogKey = "searches:recent"
	// SuggestionsKey the suggestion ranking structure (sorted set)
	SuggestionsKey = "searches:suggestions"
	// PresenceChannel shared channel for all presence transitions
	PresenceChannel = "presence:updates"
)

// ChatMessagesKey per-chat message log
func ChatMessagesKey(chatID string) string { return fmt.Sprintf("chat:%s:messages", chatID) }

// ChatMetaKey per-chat conversation summary hash
func ChatMetaKey(chatID string) string { return fmt.Sprintf("chat:%s:meta", chatID) }

// PresenceKey per-user presence record (TTL key)
func PresenceKey(userID string) string { return fmt.Sprintf("presence:%s", userID) }

// NotificationsKey per-user notification log
func NotificationsKey(userID string) string { return fmt.Sprintf("notifications:%s", userID) }

// ViewsKey per-listing view counter
func ViewsKey(listingID string) string { return fmt.Sprintf("views:%s", listingID) }

// ChatChannel pub/sub channel of a conversation
func ChatChannel(chatID string) string { return fmt.Sprintf("chat:%s", chatID) }

// UserChannel private pub/sub channel of a user
func UserChannel(userID string) string { return fmt.Sprintf("user:%s", userID) }

// ListingChannel pub/sub channel of a listing
func ListingChannel(listingID string) string { return fmt.Sprintf("listing:%s", listingID) }

// Subscription 一個已開啟的訂閱; Close 之後 handler 不再被呼叫
type Subscription interface {
	Close() error
}

// ChannelStore definition the key-value / pub-sub backend contract.
// Every primitive is atomic server side; the application layer sequences
// them (push then trim, log then meta) without cross-call atomicity.
type ChannelStore interface {
	// Append push value to the head of the list at key
	Append(ctx context.Context, key string, value interface{}) error
	// Trim keep only list entries in [start, stop]
	Trim(ctx context.Context, key string, start, stop int64) error
	// Range read raw list entries in [start, stop]; empty list gives an empty slice
	Range(ctx context.Context, key string, start, stop int64) ([]string, error)
	// SetAt rewrite the list entry at index in place
	SetAt(ctx context.Context, key string, index int64, value interface{}) error
	// SetField overwrite hash fields at key
	SetField(ctx context.Context, key string, fields map[string]interface{}) error
	// GetFields read all hash fields at key
	GetFields(ctx context.Context, key string) (map[string]string, error)
	// Increment atomic counter increment
	Increment(ctx context.Context, key string) (int64, error)
	// GetCounter read a counter, 0 when absent
	GetCounter(ctx context.Context, key string) (int64, error)
	// Publish send an event to every subscriber of channel
	Publish(ctx context.Context, channel string, event domain.Event) error
	// Subscribe open a subscription on channel; handler runs per published event
	Subscribe(ctx context.Context, channel string, handler func(domain.Event)) (Subscription, error)
	// RecordForSuggestions feed a query into the suggestion ranking
	RecordForSuggestions(ctx context.Context, query string) error
	// TopSuggestions best-ranked queries, most popular first
	TopSuggestions(ctx context.Context, limit int64) ([]string, error)
}
