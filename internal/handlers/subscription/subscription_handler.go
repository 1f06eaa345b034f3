// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"spendora-service/internal/domain/subscription"
	"spendora-service/internal/middleware"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/pkg/response"
	subsvc "spendora-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *subsvc.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *subsvc.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// List handles GET /subscriptions
func (h *SubscriptionHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var filters subscription.SubscriptionListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.ValidationError(c, "invalid filters", err)
		return
	}

	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), userID, &filters)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions", subs)
}

// Get handles GET /subscriptions/:id
func (h *SubscriptionHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid subscription id", err)
		return
	}

	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), userID, id)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "subscription not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription", sub)
}

// Create handles POST /subscriptions
func (h *SubscriptionHandler) Create(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req subscription.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid subscription payload", err)
		return
	}

	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), userID, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, err.Error(), nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create subscription", err)
		return
	}

	response.Success(c, http.StatusCreated, "subscription created", sub)
}

// Update handles PATCH /subscriptions/:id
func (h *SubscriptionHandler) Update(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid subscription id", err)
		return
	}

	var req subscription.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid subscription payload", err)
		return
	}

	sub, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), userID, id, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "subscription not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, err.Error(), nil)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update subscription", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "subscription updated", sub)
}

// Delete handles DELETE /subscriptions/:id
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := parseID(c)
	if err != nil {
		response.ValidationError(c, "invalid subscription id", err)
		return
	}

	if err := h.subscriptionService.DeleteSubscription(c.Request.Context(), userID, id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "subscription not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription deleted", nil)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
