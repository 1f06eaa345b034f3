// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"spendora-service/internal/pkg/response"
	"spendora-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.AuthService
}

func NewAuthMiddleware(authService *auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth validates the bearer token and puts the user id on the context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		userID, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("user_id", userID)
		c.Set("token", token)

		c.Next()
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// Fallback to query param (use with caution in production)
	token := c.Query("token")
	if token != "" {
		return token
	}

	return ""
}

// Helper function to get user ID from context
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(int64)
	return id, ok
}

// Helper function to get the raw token from context
func GetToken(c *gin.Context) (string, bool) {
	token, exists := c.Get("token")
	if !exists {
		return "", false
	}

	tokenStr, ok := token.(string)
	return tokenStr, ok
}
