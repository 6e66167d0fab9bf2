package app

import (
	"context"

	"github.com/B25-sm/clicktosell-sub002/internal/realtime/domain"
	"github.com/B25-sm/clicktosell-sub002/internal/realtime/repository"
	"github.com/B25-sm/clicktosell-sub002/pkg/logger"

	"go.uber.org/zap"
)

const (
	// searchLogCap 全域搜尋 log 最多保留 1000 筆
	searchLogCap = 1000
	// defaultPopularLimit getPopularSearches 預設筆數
	defaultPopularLimit = 10
)

// SearchUseCase 負責搜尋遙測 log 與 suggestion ranking
type SearchUseCase struct {
	store     repository.ChannelStore
	analytics repository.AnalyticsSink
}

// NewSearchUseCase init search use case; analytics may be nil
func NewSearchUseCase(store repository.ChannelStore, analytics repository.AnalyticsSink) *SearchUseCase {
	return &SearchUseCase{store: store, analytics: analytics}
}

// TrackSearch append the query to the global bounded log, trim to capacity
// and feed the suggestion ranking. Best effort by design — failures are
// logged and swallowed, the caller never learns.
func (uc *SearchUseCase) TrackSearch(ctx context.Context, query, userID string) {
	if query == "" {
		return
	}

	event := domain.SearchEvent{
		Query:     query,
		UserID:    userID,
		Timestamp: domain.NowISO(),
	}

	if err := uc.store.Append(ctx, repository.SearchLogKey, event); err != nil {
		logger.Log.Warn("track search: failed to append",
			zap.String("query", query),
			zap.String("err", err.Error()))
		return
	}
	if err := uc.store.Trim(ctx, repository.SearchLogKey, 0, searchLogCap-1); err != nil {
		logger.Log.Warn("track search: failed to trim log",
			zap.String("err", err.Error()))
	}

	if err := uc.store.RecordForSuggestions(ctx, query); err != nil {
		logger.Log.Warn("track search: failed to record suggestion",
			zap.String("query", query),
			zap.String("err", err.Error()))
	}

	if uc.analytics != nil {
		if err := uc.analytics.Emit(ctx, "search", event); err != nil {
			logger.Log.Warn("track search: analytics emit failed",
				zap.String("query", query),
				zap.String("err", err.Error()))
		}
	}
}

// GetPopularSearches best-ranked queries, most popular first.
// Advisory read — failures degrade to an empty slice.
func (uc *SearchUseCase) GetPopularSearches(ctx context.Context, limit int64) []string {
	if limit <= 0 {
		limit = defaultPopularLimit
	}

	suggestions, err := uc.store.TopSuggestions(ctx, limit)
	if err != nil {
		logger.Log.Warn("get popular searches degraded",
			zap.String("err", err.Error()))
		return []string{}
	}
	return suggestions
}
