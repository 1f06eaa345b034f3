// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

type BillingCycle string

const (
	CycleMonthly BillingCycle = "Monthly"
	CycleYearly  BillingCycle = "Yearly"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusPaused    Status = "Paused"
	StatusCancelled Status = "Cancelled"
)

type Subscription struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"user" db:"user_id"`
	Name   string `json:"name" db:"name"`

	Category string  `json:"category" db:"category"`
	Amount   float64 `json:"amount" db:"amount"`
	Currency string  `json:"currency" db:"currency"`

	BillingCycle    BillingCycle `json:"billingCycle" db:"billing_cycle"`
	NextRenewalDate time.Time    `json:"nextRenewalDate" db:"next_renewal_date"`
	Status          Status       `json:"status" db:"status"`

	PaymentMethod sql.NullString `json:"paymentMethod,omitempty" db:"payment_method"`
	Logo          sql.NullString `json:"logo,omitempty" db:"logo"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NextRenewalAfter returns the renewal date one billing cycle after from.
// The advance is anchored on the subscription's own renewal date, not on the
// clock, so an overdue item catches up exactly one cycle per sweep. Month
// arithmetic follows time.AddDate overflow normalization (Jan 31 + 1 month
// lands in early March).
func (c BillingCycle) NextRenewalAfter(from time.Time) time.Time {
	switch c {
	case CycleYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

func (c BillingCycle) Valid() bool {
	return c == CycleMonthly || c == CycleYearly
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusPaused || s == StatusCancelled
}

// Renewable reports whether the subscription is eligible for renewal
// processing at the given time.
func (s *Subscription) Renewable(now time.Time) bool {
	return s.Status == StatusActive && !s.NextRenewalDate.After(now)
}
