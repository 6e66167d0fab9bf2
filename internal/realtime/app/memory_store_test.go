package app

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/database"
)

// memoryChannelStore 行為與 redis 版一致的 in-memory ChannelStore，
// 用來驗證 bounded log / 排序等資料面性質。Publish 同步呼叫 handlers。
type memoryChannelStore struct {
	mu          sync.Mutex
	lists       map[string][]string
	hashes      map[string]map[string]string
	counters    map[string]int64
	suggestions map[string]float64
	published   map[string][]domain.Event
	handlers    map[string][]*memorySubscription
}

func newMemoryChannelStore() *memoryChannelStore {
	return &memoryChannelStore{
		lists:       make(map[string][]string),
		hashes:      make(map[string]map[string]string),
		counters:    make(map[string]int64),
		suggestions: make(map[string]float64),
		published:   make(map[string][]domain.Event),
		handlers:    make(map[string][]*memorySubscription),
	}
}

func (s *memoryChannelStore) Append(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([]string{string(data)}, s.lists[key]...)
	return nil
}

func (s *memoryChannelStore) Trim(ctx context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if start < 0 {
		start = 0
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop || len(list) == 0 {
		s.lists[key] = nil
		return nil
	}
	s.lists[key] = list[start : stop+1]
	return nil
}

func (s *memoryChannelStore) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if stop < 0 {
		stop = int64(len(list)) + stop
	}
	if stop >= int64(len(list)) {
		stop = int64(len(list)) - 1
	}
	if start > stop || len(list) == 0 {
		return []string{}, nil
	}
	out := make([]string, 0, stop-start+1)
	out = append(out, list[start:stop+1]...)
	return out, nil
}

func (s *memoryChannelStore) SetAt(ctx context.Context, key string, index int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key][index] = string(data)
	return nil
}

func (s *memoryChannelStore) SetField(ctx context.Context, key string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.hashes[key]
	if !ok {
		hash = make(map[string]string)
		s.hashes[key] = hash
	}
	for field, value := range fields {
		hash[field], _ = value.(string)
	}
	return nil
}

func (s *memoryChannelStore) GetFields(ctx context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	for field, value := range s.hashes[key] {
		out[field] = value
	}
	return out, nil
}

func (s *memoryChannelStore) Increment(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

func (s *memoryChannelStore) GetCounter(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

func (s *memoryChannelStore) Publish(ctx context.Context, channel string, event domain.Event) error {
	s.mu.Lock()
	s.published[channel] = append(s.published[channel], event)
	subs := append([]*memorySubscription(nil), s.handlers[channel]...)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.handler(event)
	}
	return nil
}

type memorySubscription struct {
	store   *memoryChannelStore
	channel string
	handler func(domain.Event)
	closed  bool
}

func (m *memorySubscription) Close() error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.closed = true
	subs := m.store.handlers[m.channel]
	for i, sub := range subs {
		if sub == m {
			m.store.handlers[m.channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryChannelStore) Subscribe(ctx context.Context, channel string, handler func(domain.Event)) (repository.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &memorySubscription{store: s, channel: channel, handler: handler}
	s.handlers[channel] = append(s.handlers[channel], sub)
	return sub, nil
}

func (s *memoryChannelStore) RecordForSuggestions(ctx context.Context, query string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions[query]++
	return nil
}

func (s *memoryChannelStore) TopSuggestions(ctx context.Context, limit int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queries := make([]string, 0, len(s.suggestions))
	for query := range s.suggestions {
		queries = append(queries, query)
	}
	sort.Slice(queries, func(i, j int) bool {
		return s.suggestions[queries[i]] > s.suggestions[queries[j]]
	})
	if limit < int64(len(queries)) {
		queries = queries[:limit]
	}
	return queries, nil
}

// listLen 測試用，回傳 list 目前長度
func (s *memoryChannelStore) listLen(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists[key])
}

// publishedOn 測試用，回傳 channel 上發布過的事件
func (s *memoryChannelStore) publishedOn(channel string) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Event(nil), s.published[channel]...)
}

// memoryPresenceRepo in-memory RedisRepository[domain.PresenceRecord] with TTL
type memoryPresenceRepo struct {
	mu      sync.Mutex
	records map[string]memoryPresenceEntry
}

type memoryPresenceEntry struct {
	record    domain.PresenceRecord
	expiresAt time.Time
}

func newMemoryPresenceRepo() *memoryPresenceRepo {
	return &memoryPresenceRepo{records: make(map[string]memoryPresenceEntry)}
}

func (r *memoryPresenceRepo) Set(ctx context.Context, key string, value domain.PresenceRecord, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = memoryPresenceEntry{record: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (r *memoryPresenceRepo) Get(ctx context.Context, key string) (domain.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.records[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return domain.PresenceRecord{}, database.ErrNil
	}
	return entry.record, nil
}

func (r *memoryPresenceRepo) Del(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, key)
	return nil
}

func (r *memoryPresenceRepo) GetTTL(ctx context.Context, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.records[key]
	if !ok {
		return 0, nil
	}
	ttl := time.Until(entry.expiresAt)
	if ttl < 0 {
		return 0, nil
	}
	return int(ttl.Seconds()), nil
}

func (r *memoryPresenceRepo) ExtendTTL(ctx context.Context, key string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.records[key]; ok {
		entry.expiresAt = time.Now().Add(ttl)
		r.records[key] = entry
	}
	return nil
}
