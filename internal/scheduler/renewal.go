// internal/scheduler/renewal.go
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"spendora-service/internal/domain/payment"
	"spendora-service/internal/domain/subscription"
	wstypes "spendora-service/internal/domain/websocket"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// ErrSweepInProgress is returned when a sweep is triggered while the
// previous one is still running. The caller skips the tick; due items stay
// due and are picked up on the next one.
var ErrSweepInProgress = errors.New("renewal sweep already in progress")

// SubscriptionStore is the slice of the subscription repository the sweeper
// needs.
type SubscriptionStore interface {
	FindDue(ctx context.Context, now time.Time) ([]subscription.Subscription, error)
	Save(ctx context.Context, sub *subscription.Subscription) error
}

// PaymentStore appends charges to the payment ledger.
type PaymentStore interface {
	Create(ctx context.Context, p *payment.Payment) error
}

// EventPublisher pushes named events to connected clients. Publishing is
// best-effort: a failed publish is logged and never rolls back a committed
// renewal.
type EventPublisher interface {
	Publish(event string, payload interface{}) error
	PublishToOwner(ownerID int64, event string, payload interface{}) error
}

// SweepResult aggregates one sweep's per-item outcomes.
type SweepResult struct {
	Processed int
	Failed    int
}

// RenewalSweeper advances every due Active subscription into its next
// billing period: one Completed payment per item, renewal date moved exactly
// one cycle forward (anchored on the old date), then payment_processed and
// subscription_updated events.
type RenewalSweeper struct {
	subs        SubscriptionStore
	payments    PaymentStore
	publisher   EventPublisher
	logger      *zap.Logger
	itemTimeout time.Duration

	running atomic.Bool
}

func NewRenewalSweeper(
	subs SubscriptionStore,
	payments PaymentStore,
	publisher EventPublisher,
	itemTimeout time.Duration,
	logger *zap.Logger,
) (*RenewalSweeper, error) {
	if subs == nil {
		return nil, errors.New("renewal sweeper: subscription store is required")
	}
	if payments == nil {
		return nil, errors.New("renewal sweeper: payment store is required")
	}
	if publisher == nil {
		return nil, errors.New("renewal sweeper: event publisher is required")
	}
	if logger == nil {
		return nil, errors.New("renewal sweeper: logger is required")
	}
	if itemTimeout <= 0 {
		itemTimeout = 10 * time.Second
	}
	return &RenewalSweeper{
		subs:        subs,
		payments:    payments,
		publisher:   publisher,
		logger:      logger,
		itemTimeout: itemTimeout,
	}, nil
}

// RunSweep processes every subscription due at now. Items are independent:
// one item's failure is logged and counted, and the rest of the sweep
// continues. Only a store read failure aborts the whole cycle.
func (s *RenewalSweeper) RunSweep(ctx context.Context, now time.Time) (SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SweepResult{}, ErrSweepInProgress
	}
	defer s.running.Store(false)

	var result SweepResult

	due, err := s.subs.FindDue(ctx, now)
	if err != nil {
		s.logger.Error("renewal sweep: failed to list due subscriptions", zap.Error(err))
		return result, err
	}

	for i := range due {
		sub := &due[i]
		if err := s.processOne(ctx, now, sub); err != nil {
			result.Failed++
			s.logger.Error("renewal sweep: failed to process subscription",
				zap.Int64("subscription_id", sub.ID),
				zap.String("name", sub.Name),
				zap.Error(err),
			)
			continue
		}
		result.Processed++
	}

	s.logger.Info("renewal sweep finished",
		zap.Time("now", now),
		zap.Int("due", len(due)),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}

// processOne renews a single subscription. The ledger write and the date
// advance are the durable effects; event publication afterwards is
// best-effort and never fails the item.
func (s *RenewalSweeper) processOne(ctx context.Context, now time.Time, sub *subscription.Subscription) error {
	itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	// Guard against stores returning items the query should have excluded.
	if !sub.Renewable(now) {
		return errors.New("subscription is not due")
	}

	p := &payment.Payment{
		Reference:      ulid.Make().String(),
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Amount:         sub.Amount,
		Currency:       sub.Currency,
		Date:           now,
		Status:         payment.StatusCompleted,
	}
	if err := s.payments.Create(itemCtx, p); err != nil {
		return err
	}

	// Advance anchored on the subscription's own renewal date, never on the
	// clock: an item overdue by several cycles catches up one cycle per
	// sweep until current.
	sub.NextRenewalDate = sub.BillingCycle.NextRenewalAfter(sub.NextRenewalDate)

	if err := s.subs.Save(itemCtx, sub); err != nil {
		return err
	}

	if err := s.publisher.Publish(string(wstypes.EventTypePaymentProcessed), wstypes.PaymentProcessedData{
		Subscription: sub.Name,
		Amount:       sub.Amount,
		Date:         now,
		UserID:       sub.UserID,
	}); err != nil {
		s.logger.Warn("renewal sweep: payment_processed publish failed",
			zap.Int64("subscription_id", sub.ID),
			zap.Error(err),
		)
	}

	if err := s.publisher.Publish(string(wstypes.EventTypeSubscriptionUpdated), sub); err != nil {
		s.logger.Warn("renewal sweep: subscription_updated publish failed",
			zap.Int64("subscription_id", sub.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("renewed subscription",
		zap.Int64("subscription_id", sub.ID),
		zap.String("name", sub.Name),
		zap.Time("next_renewal", sub.NextRenewalDate),
	)

	return nil
}
