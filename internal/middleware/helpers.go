// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// MustGetUserID gets the user ID from context or panics
func MustGetUserID(c *gin.Context) int64 {
	userID, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return userID
}

// MustGetToken gets the raw token from context or panics
func MustGetToken(c *gin.Context) string {
	token, exists := GetToken(c)
	if !exists {
		panic("token not found in context")
	}
	return token
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}
