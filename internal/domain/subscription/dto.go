// internal/domain/subscription/dto.go
package subscription

import "time"

type CreateSubscriptionRequest struct {
	Name            string       `json:"name" binding:"required,max=255"`
	Category        string       `json:"category" binding:"required,max=100"`
	Amount          float64      `json:"amount" binding:"required,gt=0"`
	BillingCycle    BillingCycle `json:"billingCycle" binding:"required"`
	NextRenewalDate time.Time    `json:"nextRenewalDate" binding:"required"`
	PaymentMethod   string       `json:"paymentMethod"`
	Currency        string       `json:"currency" binding:"omitempty,len=3"`
	Logo            string       `json:"logo"`
}

type UpdateSubscriptionRequest struct {
	Name            *string       `json:"name" binding:"omitempty,max=255"`
	Category        *string       `json:"category" binding:"omitempty,max=100"`
	Amount          *float64      `json:"amount" binding:"omitempty,gt=0"`
	BillingCycle    *BillingCycle `json:"billingCycle"`
	NextRenewalDate *time.Time    `json:"nextRenewalDate"`
	Status          *Status       `json:"status"`
	PaymentMethod   *string       `json:"paymentMethod"`
	Currency        *string       `json:"currency" binding:"omitempty,len=3"`
	Logo            *string       `json:"logo"`
}

type SubscriptionListFilters struct {
	Status   *Status `form:"status"`
	Category *string `form:"category"`
}
