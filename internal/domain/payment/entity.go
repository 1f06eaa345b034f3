// internal/domain/payment/entity.go
package payment

import "time"

type PaymentStatus string

const (
	StatusCompleted PaymentStatus = "Completed"
	StatusFailed    PaymentStatus = "Failed"
	StatusPending   PaymentStatus = "Pending"
)

// Payment is a ledger entry for a charge. Entries are append-only: the
// renewal scheduler creates one per processed renewal and nothing mutates
// them afterwards.
type Payment struct {
	ID             int64         `json:"id" db:"id"`
	Reference      string        `json:"reference" db:"reference"`
	UserID         int64         `json:"user" db:"user_id"`
	SubscriptionID int64         `json:"subscription" db:"subscription_id"`
	Amount         float64       `json:"amount" db:"amount"`
	Currency       string        `json:"currency" db:"currency"`
	Date           time.Time     `json:"date" db:"paid_at"`
	Status         PaymentStatus `json:"status" db:"status"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}
