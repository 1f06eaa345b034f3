// internal/scheduler/reminder.go
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendora-service/internal/domain/subscription"
	"spendora-service/internal/domain/user"
	wstypes "spendora-service/internal/domain/websocket"

	"go.uber.org/zap"
)

// ReminderStore lists Active subscriptions renewing inside a lookahead
// window.
type ReminderStore interface {
	FindRenewingWithin(ctx context.Context, now time.Time, window time.Duration) ([]subscription.Subscription, error)
}

// OwnerDirectory resolves subscription owners to deliverable addresses.
type OwnerDirectory interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// EmailSender delivers external reminder messages.
type EmailSender interface {
	Send(to, subject, body string) error
}

// ReminderMarker deduplicates reminders across runs. TryMark returns true
// when the caller is the first to claim the reminder for a subscription's
// pending renewal date.
type ReminderMarker interface {
	TryMark(ctx context.Context, subscriptionID int64, renewalDate time.Time) (bool, error)
}

// ReminderResult aggregates one reminder run.
type ReminderResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// ReminderJob notifies owners about renewals coming up inside the lookahead
// window. It never mutates subscriptions or payments: read, then notify.
type ReminderJob struct {
	subs      ReminderStore
	users     OwnerDirectory
	email     EmailSender
	publisher EventPublisher
	marks     ReminderMarker
	lookahead time.Duration
	logger    *zap.Logger
}

func NewReminderJob(
	subs ReminderStore,
	users OwnerDirectory,
	email EmailSender,
	publisher EventPublisher,
	marks ReminderMarker,
	lookahead time.Duration,
	logger *zap.Logger,
) (*ReminderJob, error) {
	if subs == nil || users == nil || email == nil || publisher == nil || marks == nil || logger == nil {
		return nil, errors.New("reminder job: all collaborators are required")
	}
	if lookahead <= 0 {
		lookahead = 3 * 24 * time.Hour
	}
	return &ReminderJob{
		subs:      subs,
		users:     users,
		email:     email,
		publisher: publisher,
		marks:     marks,
		lookahead: lookahead,
		logger:    logger,
	}, nil
}

// Run sends one reminder per pending renewal in [now, now+lookahead].
// Failures are isolated per subscription; the run itself only errors when
// the store read fails.
func (j *ReminderJob) Run(ctx context.Context, now time.Time) (ReminderResult, error) {
	var result ReminderResult

	upcoming, err := j.subs.FindRenewingWithin(ctx, now, j.lookahead)
	if err != nil {
		j.logger.Error("reminder run: failed to list upcoming renewals", zap.Error(err))
		return result, err
	}

	for i := range upcoming {
		sub := &upcoming[i]

		// Claim before sending: a duplicate run, or a subscription that
		// stays in the window for days, sends at most one reminder per
		// pending renewal.
		claimed, err := j.marks.TryMark(ctx, sub.ID, sub.NextRenewalDate)
		if err != nil {
			result.Failed++
			j.logger.Error("reminder run: dedup mark failed",
				zap.Int64("subscription_id", sub.ID),
				zap.Error(err),
			)
			continue
		}
		if !claimed {
			result.Skipped++
			continue
		}

		if err := j.remindOwner(ctx, sub); err != nil {
			result.Failed++
			j.logger.Error("reminder run: failed to notify owner",
				zap.Int64("subscription_id", sub.ID),
				zap.Int64("user_id", sub.UserID),
				zap.Error(err),
			)
			continue
		}
		result.Sent++
	}

	j.logger.Info("reminder run finished",
		zap.Time("now", now),
		zap.Int("upcoming", len(upcoming)),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

func (j *ReminderJob) remindOwner(ctx context.Context, sub *subscription.Subscription) error {
	owner, err := j.users.FindByID(ctx, sub.UserID)
	if err != nil {
		return fmt.Errorf("owner lookup failed: %w", err)
	}

	title := "Upcoming renewal"
	message := fmt.Sprintf("%s renews on %s for %.2f %s.",
		sub.Name, sub.NextRenewalDate.Format("Jan 2, 2006"), sub.Amount, sub.Currency)

	// Targeted in-app event, owner's connections only.
	if err := j.publisher.PublishToOwner(sub.UserID, string(wstypes.EventTypeNotification), wstypes.NotificationData{
		Title:   title,
		Message: message,
	}); err != nil {
		j.logger.Warn("reminder run: notification publish failed",
			zap.Int64("subscription_id", sub.ID),
			zap.Error(err),
		)
	}

	subject := fmt.Sprintf("%s renews soon", sub.Name)
	body := fmt.Sprintf("<p>Hi %s,</p><p>%s</p><p>Pause or cancel it from your Spendora dashboard if you no longer need it.</p>",
		owner.Name, message)

	if err := j.email.Send(owner.Email, subject, body); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}

	return nil
}
