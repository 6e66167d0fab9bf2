package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisChannelStore ChannelStore backed by go-redis
type RedisChannelStore struct {
	client *redis.Client
}

// NewRedisChannelStore create RedisChannelStore
func NewRedisChannelStore(client *redis.Client) *RedisChannelStore {
	return &RedisChannelStore{client: client}
}

// Append 將 value 序列化後推入列表頭部
func (s *RedisChannelStore) Append(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.LPush(ctx, key, data).Err()
}

// Trim keep only entries in [start, stop].
// LTRIM 是冪等的，併發 push/trim 交錯後長度仍受上限約束。
func (s *RedisChannelStore) Trim(ctx context.Context, key string, start, stop int64) error {
	return s.client.LTrim(ctx, key, start, stop).Err()
}

// Range read raw entries in [start, stop]
func (s *RedisChannelStore) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.client.LRange(ctx, key, start, stop).Result()
}

// SetAt rewrite the entry at index in place
func (s *RedisChannelStore) SetAt(ctx context.Context, key string, index int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.LSet(ctx, key, index, data).Err()
}

// SetField overwrite hash fields at key
func (s *RedisChannelStore) SetField(ctx context.Context, key string, fields map[string]interface{}) error {
	return s.client.HSet(ctx, key, fields).Err()
}

// GetFields read all hash fields at key; absent key gives an empty map
func (s *RedisChannelStore) GetFields(ctx context.Context, key string) (map[string]string, error) {
	return s.client.HGetAll(ctx, key).Result()
}

// Increment atomic INCR
func (s *RedisChannelStore) Increment(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

// GetCounter read a counter, 0 when absent
func (s *RedisChannelStore) GetCounter(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("failed to get counter %s: %w", key, err)
	}
	return val, nil
}

// Publish 將 event 序列化後，發布到指定 channel
func (s *RedisChannelStore) Publish(ctx context.Context, channel string, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, data).Err()
}

// redisSubscription wraps a live *redis.PubSub handle
type redisSubscription struct {
	channel string
	sub     *redis.PubSub
}

// Close 關閉訂閱，訊息 channel 隨之關閉，轉發 goroutine 結束
func (r *redisSubscription) Close() error {
	logger.Log.Info("subscription close", zap.String("channel", r.channel))
	return r.sub.Close()
}

// Subscribe 訂閱 channel，收到訊息後呼叫 handler 處理
func (s *RedisChannelStore) Subscribe(ctx context.Context, channel string, handler func(domain.Event)) (Subscription, error) {
	sub := s.client.Subscribe(ctx, channel)

	// 等待訂閱確認，失敗時不留下半開的 handle
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", channel, err)
	}

	go func() {
		for m := range sub.Channel() {
			var event domain.Event
			if err := json.Unmarshal([]byte(m.Payload), &event); err != nil {
				logger.Log.Error("subscribe payload unmarshal err",
					zap.String("channel", channel),
					zap.String("err", err.Error()))
				continue
			}
			handler(event)
		}
	}()

	return &redisSubscription{channel: channel, sub: sub}, nil
}

// RecordForSuggestions feed a query into the suggestion ranking (ZINCRBY)
func (s *RedisChannelStore) RecordForSuggestions(ctx context.Context, query string) error {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil
	}
	return s.client.ZIncrBy(ctx, SuggestionsKey, 1, normalized).Err()
}

// TopSuggestions best-ranked queries, most popular first (ZREVRANGE)
func (s *RedisChannelStore) TopSuggestions(ctx context.Context, limit int64) ([]string, error) {
	return s.client.ZRevRange(ctx, SuggestionsKey, 0, limit-1).Result()
}
