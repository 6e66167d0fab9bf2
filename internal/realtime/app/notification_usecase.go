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
	// notificationLogCap 每個 user 最多保留 100 則通知
	notificationLogCap = 100
	// defaultNotificationLimit getUserNotifications 預設讀取筆數
	defaultNotificationLimit = 20
)

// NotificationUseCase 負責 per-user 通知 log、已讀狀態與 new_notification 推播
type NotificationUseCase struct {
	store repository.ChannelStore
}

// NewNotificationUseCase init notification use case
func NewNotificationUseCase(store repository.ChannelStore) *NotificationUseCase {
	return &NotificationUseCase{store: store}
}

// SendNotification append a notification to the user's log, trim to capacity
// and publish new_notification on the user's private channel. Propagating —
// a silently lost notification would lose user-visible state.
func (uc *NotificationUseCase) SendNotification(ctx context.Context, userID string, spec domain.NotificationSpec) (*domain.Notification, error) {
	if userID == "" {
		return nil, errprocess.Set("send notification: user id is required")
	}

	notifType := spec.Type
	if notifType == "" {
		notifType = "info"
	}
	data := spec.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	notification := domain.Notification{
		ID:        domain.NewEntryID(),
		UserID:    userID,
		Title:     spec.Title,
		Message:   spec.Message,
		Type:      notifType,
		Data:      data,
		Timestamp: domain.NowISO(),
		Read:      false,
	}

	key := repository.NotificationsKey(userID)
	if err := uc.store.Append(ctx, key, notification); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send notification: failed to store: %v", err))
	}
	if err := uc.store.Trim(ctx, key, 0, notificationLogCap-1); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send notification: failed to trim log: %v", err))
	}

	event := domain.Event{Type: domain.EventNewNotification, UserID: userID, Data: notification}
	if err := uc.store.Publish(ctx, repository.UserChannel(userID), event); err != nil {
		return nil, errprocess.Set(fmt.Sprintf("send notification: failed to publish: %v", err))
	}

	return &notification, nil
}

// GetUserNotifications read the most recent limit notifications, newest first.
// 與訊息不同：通知不反轉，維持存儲順序（UI 要最近的在最上面）。
// Advisory read — store errors degrade to an empty slice.
func (uc *NotificationUseCase) GetUserNotifications(ctx context.Context, userID string, limit int64) []domain.Notification {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	raw, err := uc.store.Range(ctx, repository.NotificationsKey(userID), 0, limit-1)
	if err != nil {
		logger.Log.Warn("get notifications degraded",
			zap.String("userId", userID),
			zap.String("err", err.Error()))
		return []domain.Notification{}
	}

	notifications := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			logger.Log.Error("get notifications: skip corrupt entry",
				zap.String("userId", userID),
				zap.String("err", err.Error()))
			continue
		}
		notifications = append(notifications, n)
	}

	return notifications
}

// MarkNotificationAsRead scan the user's log linearly, rewrite the first id
// match in place with read=true and stop. No match is a silent no-op. Best
// effort — failures are logged and swallowed, the caller never learns.
// O(n) per call; acceptable for a log capped at 100. A set-based read-id
// side index would scale better but changes the storage contract.
func (uc *NotificationUseCase) MarkNotificationAsRead(ctx context.Context, userID, notificationID string) {
	key := repository.NotificationsKey(userID)
	raw, err := uc.store.Range(ctx, key, 0, -1)
	if err != nil {
		logger.Log.Warn("mark notification read: failed to read log",
			zap.String("userId", userID),
			zap.String("err", err.Error()))
		return
	}

	for i, item := range raw {
		var n domain.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			continue
		}
		if n.ID != notificationID {
			continue
		}

		// ids are assumed unique per user — first match wins
		if !n.Read {
			n.Read = true
			if err := uc.store.SetAt(ctx, key, int64(i), n); err != nil {
				logger.Log.Warn("mark notification read: failed to rewrite entry",
					zap.String("userId", userID),
					zap.String("notificationId", notificationID),
					zap.String("err", err.Error()))
			}
		}
		return
	}
}
