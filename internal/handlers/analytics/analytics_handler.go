// internal/handlers/analytics/analytics_handler.go
package analytics

import (
	"net/http"

	"spendora-service/internal/middleware"
	"spendora-service/internal/pkg/response"
	analyticssvc "spendora-service/internal/service/analytics"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService *analyticssvc.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *analyticssvc.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Summary handles GET /analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	summary, err := h.analyticsService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to compute analytics", err)
		return
	}

	response.Success(c, http.StatusOK, "analytics summary", summary)
}
