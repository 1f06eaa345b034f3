// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"fmt"

	"spendora-service/internal/domain/payment"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create appends a payment to the ledger. Payments are never updated.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			reference, user_id, subscription_id, amount, currency, paid_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.Reference, p.UserID, p.SubscriptionID, p.Amount, p.Currency, p.Date, p.Status,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByUser lists a user's payments, newest first.
func (r *PaymentRepository) FindByUser(ctx context.Context, userID int64, limit int) ([]payment.Payment, error) {
	query := `
		SELECT id, reference, user_id, subscription_id, amount, currency, paid_at, status, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		var p payment.Payment
		err := rows.Scan(
			&p.ID, &p.Reference, &p.UserID, &p.SubscriptionID,
			&p.Amount, &p.Currency, &p.Date, &p.Status, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read payment rows: %w", err)
	}

	return payments, nil
}
