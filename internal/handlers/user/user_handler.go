// internal/handlers/user/user_handler.go
package user

import (
	"net/http"

	"spendora-service/internal/domain/user"
	"spendora-service/internal/middleware"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/pkg/response"
	usersvc "spendora-service/internal/service/user"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *usersvc.UserService
}

func NewUserHandler(userService *usersvc.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile", u)
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req user.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid profile payload", err)
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already in use", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", u)
}

// ChangePassword handles PUT /users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req user.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid password payload", err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		if xerrors.Is(err, xerrors.ErrUnauthorized) {
			response.Unauthorized(c, "current password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to change password", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed", nil)
}

// DeleteAccount handles DELETE /users/me
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete account", err)
		return
	}

	response.Success(c, http.StatusOK, "account deleted", nil)
}
