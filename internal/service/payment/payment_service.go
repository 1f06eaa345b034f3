// internal/service/payment/payment_service.go
package payment

import (
	"context"

	"spendora-service/internal/domain/payment"
	"spendora-service/internal/repository/postgres"
)

type PaymentService struct {
	payments *postgres.PaymentRepository
}

func NewPaymentService(payments *postgres.PaymentRepository) *PaymentService {
	return &PaymentService{payments: payments}
}

// ListPayments returns the user's payment history, newest first.
func (s *PaymentService) ListPayments(ctx context.Context, userID int64, limit int) ([]payment.Payment, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.payments.FindByUser(ctx, userID, limit)
}
