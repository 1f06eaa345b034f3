// internal/handlers/websocket/websocket.go
package websocket

import (
	"net/http"
	"strings"
	"time"

	"spendora-service/internal/pkg/response"
	ws "spendora-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from the SPA origin; origin filtering is
		// enforced by the CORS allowlist on the REST side.
		return true
	},
}

type WebSocketHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWebSocketHandler(hub *ws.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
	}
}

// HandleConnection handles WebSocket connection with authentication
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	token := h.extractToken(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "missing authentication token", nil)
		return
	}

	auth, err := h.hub.AuthenticateClient(c.Request.Context(), token)
	if err != nil {
		h.logger.Error("websocket authentication failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusUnauthorized, "authentication failed", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Error(err),
			zap.String("ip", c.ClientIP()),
		)
		return
	}

	client := ws.NewClient(h.hub, conn, auth)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// extractToken extracts token from query param or Authorization header
func (h *WebSocketHandler) extractToken(c *gin.Context) string {
	// Query parameter first (common for WebSocket)
	token := c.Query("token")
	if token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}

// GetStats returns WebSocket connection statistics
func (h *WebSocketHandler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"total_connections": h.hub.TotalClients(),
		"timestamp":         time.Now(),
	}

	response.Success(c, http.StatusOK, "websocket stats", stats)
}
