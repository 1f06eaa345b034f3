// internal/service/analytics/analytics_service.go
package analytics

import (
	"context"

	"spendora-service/internal/domain/analytics"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/repository/postgres"
	redisrepo "spendora-service/internal/repository/redis"

	"go.uber.org/zap"
)

type AnalyticsService struct {
	subs   *postgres.SubscriptionRepository
	cache  *redisrepo.AnalyticsCache
	logger *zap.Logger
}

func NewAnalyticsService(
	subs *postgres.SubscriptionRepository,
	cache *redisrepo.AnalyticsCache,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{subs: subs, cache: cache, logger: logger}
}

// GetSummary returns the user's spending summary, cache-aside. Cache errors
// degrade to a direct query.
func (s *AnalyticsService) GetSummary(ctx context.Context, userID int64) (*analytics.Summary, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !xerrors.Is(err, xerrors.ErrNotFound) {
		s.logger.Warn("analytics cache read failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	summary, err := s.subs.AnalyticsSummary(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, userID, summary); err != nil {
		s.logger.Warn("analytics cache write failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return summary, nil
}
