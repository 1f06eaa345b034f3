// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"spendora-service/internal/domain/subscription"
	wstypes "spendora-service/internal/domain/websocket"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/repository/postgres"
	redisrepo "spendora-service/internal/repository/redis"

	"go.uber.org/zap"
)

// EventPublisher pushes dashboard refresh events. Best-effort: failures are
// logged, never surfaced to the API caller.
type EventPublisher interface {
	Publish(event string, payload interface{}) error
}

type SubscriptionService struct {
	repo      *postgres.SubscriptionRepository
	publisher EventPublisher
	cache     *redisrepo.AnalyticsCache
	logger    *zap.Logger
}

func NewSubscriptionService(
	repo *postgres.SubscriptionRepository,
	publisher EventPublisher,
	cache *redisrepo.AnalyticsCache,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:      repo,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// ListSubscriptions returns the user's subscriptions.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, userID int64, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, error) {
	return s.repo.FindByUser(ctx, userID, filters)
}

// GetSubscription returns one subscription, enforcing ownership.
func (s *SubscriptionService) GetSubscription(ctx context.Context, userID, id int64) (*subscription.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, xerrors.ErrNotFound
	}
	return sub, nil
}

// CreateSubscription creates a subscription for the user and announces it.
func (s *SubscriptionService) CreateSubscription(ctx context.Context, userID int64, req *subscription.CreateSubscriptionRequest) (*subscription.Subscription, error) {
	if !req.BillingCycle.Valid() {
		return nil, fmt.Errorf("%w: billing cycle must be Monthly or Yearly", xerrors.ErrInvalidInput)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	sub := &subscription.Subscription{
		UserID:          userID,
		Name:            req.Name,
		Category:        req.Category,
		Amount:          req.Amount,
		Currency:        currency,
		BillingCycle:    req.BillingCycle,
		NextRenewalDate: req.NextRenewalDate,
		Status:          subscription.StatusActive,
		PaymentMethod:   nullString(req.PaymentMethod),
		Logo:            nullString(req.Logo),
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, userID)
	s.publish(wstypes.EventTypeSubscriptionAdded, sub)

	return sub, nil
}

// UpdateSubscription applies partial changes to an owned subscription.
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, userID, id int64, req *subscription.UpdateSubscriptionRequest) (*subscription.Subscription, error) {
	sub, err := s.GetSubscription(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	if req.Amount != nil {
		sub.Amount = *req.Amount
	}
	if req.BillingCycle != nil {
		if !req.BillingCycle.Valid() {
			return nil, fmt.Errorf("%w: billing cycle must be Monthly or Yearly", xerrors.ErrInvalidInput)
		}
		sub.BillingCycle = *req.BillingCycle
	}
	if req.NextRenewalDate != nil {
		sub.NextRenewalDate = *req.NextRenewalDate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("%w: status must be Active, Paused or Cancelled", xerrors.ErrInvalidInput)
		}
		sub.Status = *req.Status
	}
	if req.PaymentMethod != nil {
		sub.PaymentMethod = nullString(*req.PaymentMethod)
	}
	if req.Currency != nil {
		sub.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Logo != nil {
		sub.Logo = nullString(*req.Logo)
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.invalidateAnalytics(ctx, userID)
	s.publish(wstypes.EventTypeSubscriptionUpdated, sub)

	return sub, nil
}

// DeleteSubscription removes an owned subscription.
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, userID, id int64) error {
	if _, err := s.GetSubscription(ctx, userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateAnalytics(ctx, userID)
	s.publish(wstypes.EventTypeSubscriptionDeleted, map[string]int64{"id": id})

	return nil
}

func (s *SubscriptionService) publish(event wstypes.EventType, payload interface{}) {
	if err := s.publisher.Publish(string(event), payload); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}

func (s *SubscriptionService) invalidateAnalytics(ctx context.Context, userID int64) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("analytics cache invalidation failed",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
