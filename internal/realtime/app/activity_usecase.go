package app

import (
	"context"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"go.uber.org/zap"
)

// ActivityUseCase 負責 listing 瀏覽計數與 view_update 推播
type ActivityUseCase struct {
	store     repository.ChannelStore
	analytics repository.AnalyticsSink
}

// NewActivityUseCase init activity use case; analytics may be nil
func NewActivityUseCase(store repository.ChannelStore, analytics repository.AnalyticsSink) *ActivityUseCase {
	return &ActivityUseCase{store: store, analytics: analytics}
}

// IncrementViews atomic increment of the listing's view counter, then publish
// view_update carrying only a timestamp — subscribers re-query for the number.
// Best effort by design: failures are logged and swallowed, the caller never
// learns whether the count landed.
func (uc *ActivityUseCase) IncrementViews(ctx context.Context, listingID string) {
	if listingID == "" {
		return
	}

	if _, err := uc.store.Increment(ctx, repository.ViewsKey(listingID)); err != nil {
		logger.Log.Warn("increment views: failed to increment",
			zap.String("listingId", listingID),
			zap.String("err", err.Error()))
		return
	}

	timestamp := domain.NowISO()
	event := domain.Event{
		Type: domain.EventViewUpdate,
		Data: map[string]interface{}{"timestamp": timestamp},
	}
	if err := uc.store.Publish(ctx, repository.ListingChannel(listingID), event); err != nil {
		logger.Log.Warn("increment views: failed to publish",
			zap.String("listingId", listingID),
			zap.String("err", err.Error()))
	}

	if uc.analytics != nil {
		payload := map[string]interface{}{
			"event":     "listing_view",
			"listingId": listingID,
			"timestamp": timestamp,
		}
		if err := uc.analytics.Emit(ctx, listingID, payload); err != nil {
			logger.Log.Warn("increment views: analytics emit failed",
				zap.String("listingId", listingID),
				zap.String("err", err.Error()))
		}
	}
}

// GetViews read a listing's view count. Non-critical metric — absent keys and
// store errors both degrade to 0.
func (uc *ActivityUseCase) GetViews(ctx context.Context, listingID string) int64 {
	count, err := uc.store.GetCounter(ctx, repository.ViewsKey(listingID))
	if err != nil {
		logger.Log.Warn("get views degraded",
			zap.String("listingId", listingID),
			zap.String("err", err.Error()))
		return 0
	}
	return count
}
