// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"
	"strconv"

	"spendora-service/internal/middleware"
	"spendora-service/internal/pkg/response"
	paysvc "spendora-service/internal/service/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService *paysvc.PaymentService
}

func NewPaymentHandler(paymentService *paysvc.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// List handles GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	payments, err := h.paymentService.ListPayments(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments", payments)
}
