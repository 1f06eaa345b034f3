// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"spendora-service/internal/domain/user"
	"spendora-service/internal/middleware"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/pkg/response"
	authsvc "spendora-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *authsvc.AuthService
}

func NewAuthHandler(authService *authsvc.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid registration payload", err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", resp)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid login payload", err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrUnauthorized) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.Error(c, http.StatusInternalServerError, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.MustGetToken(c)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		if xerrors.Is(err, xerrors.ErrUnauthorized) {
			response.Unauthorized(c, "invalid token")
			return
		}
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}
