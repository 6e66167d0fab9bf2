package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	errprocess "github.com/B25-sm/clicktosell-sub002/pkg/err"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"go.uber.org/zap"
)

// SubscriptionRegistry 管理 logical key → subscription handle 的集合。
// Constructed at service startup, Shutdown at service stop — no package-level
// singleton. The map is mutex-guarded; subscribe/unsubscribe arrive from
// concurrent request contexts.
type SubscriptionRegistry struct {
	mu    sync.Mutex
	store repository.ChannelStore
	subs  map[string]repository.Subscription
}

// NewSubscriptionRegistry create SubscriptionRegistry
func NewSubscriptionRegistry(store repository.ChannelStore) *SubscriptionRegistry {
	return &SubscriptionRegistry{
		store: store,
		subs:  make(map[string]repository.Subscription),
	}
}

// Subscribe open a subscription on channel and register it under logicalKey.
// Keys identify a consumer, not a channel — the gateway scopes them per
// connection ("conn:{connId}:chat:{id}") so several connections can listen on
// the same channel. An already-active logical key is closed before being
// replaced, so at most one live handle exists per key.
func (r *SubscriptionRegistry) Subscribe(ctx context.Context, logicalKey, channel string, onEvent func(domain.Event)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.subs[logicalKey]; ok {
		delete(r.subs, logicalKey)
		if err := old.Close(); err != nil {
			logger.Log.Warn("subscribe: failed to close replaced handle",
				zap.String("logicalKey", logicalKey),
				zap.String("err", err.Error()))
		}
	}

	sub, err := r.store.Subscribe(ctx, channel, onEvent)
	if err != nil {
		return errprocess.Set(fmt.Sprintf("subscribe %s: %v", logicalKey, err))
	}
	r.subs[logicalKey] = sub

	return nil
}

// Unsubscribe close and remove the handle under logicalKey; no-op if absent.
func (r *SubscriptionRegistry) Unsubscribe(logicalKey string) error {
	r.mu.Lock()
	sub, ok := r.subs[logicalKey]
	if ok {
		delete(r.subs, logicalKey)
	}
	r.mu.Unlock()

	if !ok {
		return nil
	}
	if err := sub.Close(); err != nil {
		return errprocess.Set(fmt.Sprintf("unsubscribe %s: %v", logicalKey, err))
	}
	return nil
}

// Active 目前存活的訂閱數
func (r *SubscriptionRegistry) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Shutdown close every outstanding handle and clear the registry. Idempotent
// and never raises: each close failure is logged and swallowed so teardown
// always releases as many resources as possible.
func (r *SubscriptionRegistry) Shutdown() {
	r.mu.Lock()
	subs := r.subs
	r.subs = make(map[string]repository.Subscription)
	r.mu.Unlock()

	for logicalKey, sub := range subs {
		if err := sub.Close(); err != nil {
			logger.Log.Warn("shutdown: failed to close subscription",
				zap.String("logicalKey", logicalKey),
				zap.String("err", err.Error()))
		}
	}
}
