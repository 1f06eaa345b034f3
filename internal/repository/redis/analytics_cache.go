// internal/repository/redis/analytics_cache.go
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"spendora-service/internal/domain/analytics"
	xerrors "spendora-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const analyticsCacheTTL = 60 * time.Second

// AnalyticsCache keeps per-user dashboard summaries hot for a short window.
// Subscription writes invalidate the entry, so a stale read is bounded by
// the TTL in the worst case.
type AnalyticsCache struct {
	client *redis.Client
}

func NewAnalyticsCache(client *redis.Client) *AnalyticsCache {
	return &AnalyticsCache{client: client}
}

func (c *AnalyticsCache) key(userID int64) string {
	return fmt.Sprintf("analytics:summary:%d", userID)
}

// Get returns the cached summary or ErrNotFound on a miss.
func (c *AnalyticsCache) Get(ctx context.Context, userID int64) (*analytics.Summary, error) {
	raw, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics cache: %w", err)
	}

	var summary analytics.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode cached summary: %w", err)
	}
	return &summary, nil
}

// Set stores the summary with the cache TTL.
func (c *AnalyticsCache) Set(ctx context.Context, userID int64, summary *analytics.Summary) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.client.Set(ctx, c.key(userID), raw, analyticsCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to write analytics cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached summary for a user.
func (c *AnalyticsCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analytics cache: %w", err)
	}
	return nil
}
