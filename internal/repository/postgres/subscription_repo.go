// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spendora-service/internal/domain/analytics"
	"spendora-service/internal/domain/subscription"
	xerrors "spendora-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const subscriptionColumns = `
	id, user_id, name, category, amount, currency,
	billing_cycle, next_renewal_date, status,
	payment_method, logo, created_at, updated_at`

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Create inserts a subscription for its owner.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			user_id, name, category, amount, currency,
			billing_cycle, next_renewal_date, status, payment_method, logo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		sub.UserID, sub.Name, sub.Category, sub.Amount, sub.Currency,
		sub.BillingCycle, sub.NextRenewalDate, sub.Status, sub.PaymentMethod, sub.Logo,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription by ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	sub, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return sub, nil
}

// FindByUser retrieves all subscriptions owned by a user, optionally filtered
// by status and category.
func (r *SubscriptionRepository) FindByUser(ctx context.Context, userID int64, filters *subscription.SubscriptionListFilters) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	args := []interface{}{userID}

	if filters != nil {
		if filters.Status != nil {
			args = append(args, *filters.Status)
			query += fmt.Sprintf(" AND status = $%d", len(args))
		}
		if filters.Category != nil {
			args = append(args, *filters.Category)
			query += fmt.Sprintf(" AND category = $%d", len(args))
		}
	}
	query += " ORDER BY next_renewal_date ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// FindDue returns every Active subscription whose next renewal date is on or
// before now. Ordering across due items is not significant.
func (r *SubscriptionRepository) FindDue(ctx context.Context, now time.Time) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = $1 AND next_renewal_date <= $2`

	rows, err := r.db.Query(ctx, query, subscription.StatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// FindRenewingWithin returns Active subscriptions whose next renewal date
// falls inside [now, now+window]. Used by the reminder job; read-only.
func (r *SubscriptionRepository) FindRenewingWithin(ctx context.Context, now time.Time, window time.Duration) ([]subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = $1 AND next_renewal_date >= $2 AND next_renewal_date <= $3`

	rows, err := r.db.Query(ctx, query, subscription.StatusActive, now, now.Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming renewals: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// Save persists every mutable field of an existing subscription.
func (r *SubscriptionRepository) Save(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			name = $2, category = $3, amount = $4, currency = $5,
			billing_cycle = $6, next_renewal_date = $7, status = $8,
			payment_method = $9, logo = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		sub.ID, sub.Name, sub.Category, sub.Amount, sub.Currency,
		sub.BillingCycle, sub.NextRenewalDate, sub.Status, sub.PaymentMethod, sub.Logo,
	).Scan(&sub.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

// Delete removes a subscription by ID.
func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// AnalyticsSummary computes the dashboard aggregates for a user: total
// monthly spend over Active subscriptions (yearly amounts prorated by 12),
// Active per-category totals, and status counts across all subscriptions.
func (r *SubscriptionRepository) AnalyticsSummary(ctx context.Context, userID int64) (*analytics.Summary, error) {
	summary := &analytics.Summary{
		CategoryBreakdown: []analytics.CategorySpend{},
		StatusCounts:      []analytics.StatusCount{},
	}

	spendQuery := `
		SELECT COALESCE(SUM(
			CASE WHEN billing_cycle = $2 THEN amount ELSE amount / 12 END
		), 0)
		FROM subscriptions
		WHERE user_id = $1 AND status = $3
	`
	err := r.db.QueryRow(ctx, spendQuery, userID, subscription.CycleMonthly, subscription.StatusActive).
		Scan(&summary.TotalMonthlySpend)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly spend: %w", err)
	}

	categoryQuery := `
		SELECT category, SUM(amount), COUNT(*)
		FROM subscriptions
		WHERE user_id = $1 AND status = $2
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`
	rows, err := r.db.Query(ctx, categoryQuery, userID, subscription.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to compute category breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c analytics.CategorySpend
		if err := rows.Scan(&c.Category, &c.Total, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		summary.CategoryBreakdown = append(summary.CategoryBreakdown, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category rows: %w", err)
	}

	statusQuery := `
		SELECT status, COUNT(*)
		FROM subscriptions
		WHERE user_id = $1
		GROUP BY status
	`
	statusRows, err := r.db.Query(ctx, statusQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute status counts: %w", err)
	}
	defer statusRows.Close()

	for statusRows.Next() {
		var s analytics.StatusCount
		if err := statusRows.Scan(&s.Status, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		summary.StatusCounts = append(summary.StatusCounts, s)
	}
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read status rows: %w", err)
	}

	return summary, nil
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var sub subscription.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.Name, &sub.Category, &sub.Amount, &sub.Currency,
		&sub.BillingCycle, &sub.NextRenewalDate, &sub.Status,
		&sub.PaymentMethod, &sub.Logo, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func collectSubscriptions(rows pgx.Rows) ([]subscription.Subscription, error) {
	subs := []subscription.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription rows: %w", err)
	}
	return subs, nil
}
