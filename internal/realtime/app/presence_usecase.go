package app

import (
	"context"
	"fmt"
	"time"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/database"
	errprocess "github.com/B25-sm/clicktosell-sub002/pkg/err"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"go.uber.org/zap"
)

// presenceTTL 沒有 keepalive 超過此時間即視為 offline（key 直接過期）
const presenceTTL = 300 * time.Second

// PresenceUseCase 負責 per-user 上線狀態與 user_presence 推播
type PresenceUseCase struct {
	records database.RedisRepository[domain.PresenceRecord]
	store   repository.ChannelStore
}

// NewPresenceUseCase init presence use case
func NewPresenceUseCase(records database.RedisRepository[domain.PresenceRecord], store repository.ChannelStore) *PresenceUseCase {
	return &PresenceUseCase{records: records, store: store}
}

// SetPresence write the presence record with a 300s expiry and publish the
// transition. An explicit offline still gets an expiring record — it ages out
// the same way an online one does, so after 300s the two are indistinguishable.
func (uc *PresenceUseCase) SetPresence(ctx context.Context, userID string, status domain.PresenceStatus) (*domain.PresenceRecord, error) {
	if status == "" {
		status = domain.PresenceOnline
	}

	now := domain.NowISO()
	record := domain.PresenceRecord{
		Status:    status,
		LastSeen:  &now,
		Timestamp: now,
	}

	if err := uc.records.Set(ctx, repository.PresenceKey(userID), record, presenceTTL); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("set presence: failed to store record: %v", err))
	}

	event := domain.Event{Type: domain.EventUserPresence, UserID: userID, Data: record}
	if err := uc.store.Publish(ctx, repository.PresenceChannel, event); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("set presence: failed to publish: %v", err))
	}

	return &record, nil
}

// GetPresence read a user's presence. Presence is advisory, not authoritative:
// an absent key and a store error both degrade to offline / lastSeen null.
func (uc *PresenceUseCase) GetPresence(ctx context.Context, userID string) domain.PresenceRecord {
	record, err := uc.records.Get(ctx, repository.PresenceKey(userID))
	if err != nil {
		if err != database.ErrNil {
			logger.Log.Warn("get presence degraded",
				zap.String("userId", userID),
				zap.String("err", err.Error()))
		}
		return domain.OfflinePresence()
	}
	return record
}
