// internal/app/router.go
package app

import (
	analyticsHandler "spendora-service/internal/handlers/analytics"
	authHandler "spendora-service/internal/handlers/auth"
	paymentHandler "spendora-service/internal/handlers/payment"
	subscriptionHandler "spendora-service/internal/handlers/subscription"
	userHandler "spendora-service/internal/handlers/user"
	wsHandler "spendora-service/internal/handlers/websocket"
	"spendora-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler         *authHandler.AuthHandler
	UserHandler         *userHandler.UserHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	PaymentHandler      *paymentHandler.PaymentHandler
	AnalyticsHandler    *analyticsHandler.AnalyticsHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
	}

	// ==================== Users ====================
	users := api.Group("/users")
	users.Use(h.AuthMiddleware.Auth())
	{
		users.GET("/me", h.UserHandler.GetProfile)
		users.PUT("/me", h.UserHandler.UpdateProfile)
		users.PUT("/me/password", h.UserHandler.ChangePassword)
		users.DELETE("/me", h.UserHandler.DeleteAccount)
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.GET("", h.SubscriptionHandler.List)
		subscriptions.GET("/:id", h.SubscriptionHandler.Get)
		subscriptions.POST("", h.SubscriptionHandler.Create)
		subscriptions.PATCH("/:id", h.SubscriptionHandler.Update)
		subscriptions.DELETE("/:id", h.SubscriptionHandler.Delete)
	}

	// ==================== Payments ====================
	payments := api.Group("/payments")
	payments.Use(h.AuthMiddleware.Auth())
	{
		payments.GET("", h.PaymentHandler.List)
	}

	// ==================== Analytics ====================
	analytics := api.Group("/analytics")
	analytics.Use(h.AuthMiddleware.Auth())
	{
		analytics.GET("/summary", h.AnalyticsHandler.Summary)
	}

	// ==================== WebSocket Stats ====================
	ws := api.Group("/ws")
	ws.Use(h.AuthMiddleware.Auth())
	{
		ws.GET("/stats", h.WSHandler.GetStats)
	}
}
