// internal/repository/redis/reminder_marks.go
package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderMarks deduplicates upcoming-renewal reminders. A mark is keyed by
// subscription id plus the renewal date it reminds about, so a subscription
// sitting inside the lookahead window for several days gets exactly one
// reminder per pending renewal, and a re-run of the daily job sends nothing.
type ReminderMarks struct {
	client *redis.Client
}

func NewReminderMarks(client *redis.Client) *ReminderMarks {
	return &ReminderMarks{client: client}
}

// TryMark claims the reminder slot for a subscription's pending renewal.
// It returns true when this caller is the first to claim it. The mark
// expires after the renewal date passes plus a day of slack, so storage
// cleans itself up.
func (m *ReminderMarks) TryMark(ctx context.Context, subscriptionID int64, renewalDate time.Time) (bool, error) {
	key := fmt.Sprintf("reminder:sent:%d:%s", subscriptionID, renewalDate.Format("2006-01-02"))

	ttl := time.Until(renewalDate.Add(24 * time.Hour))
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	ok, err := m.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder: %w", err)
	}
	return ok, nil
}
