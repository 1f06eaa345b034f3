// internal/service/user/user.go
package user

import (
	"context"
	"strings"

	"spendora-service/internal/domain/user"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	users  *postgres.UserRepository
	logger *zap.Logger
}

func NewUserService(users *postgres.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetProfile returns the user's account record.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*user.User, error) {
	return s.users.FindByID(ctx, userID)
}

// UpdateProfile applies name/email changes.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *user.UpdateProfileRequest) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password before setting the new one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *user.ChangePasswordRequest) error {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return xerrors.Wrap(err, "hash password")
	}
	u.PasswordHash = string(hash)

	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// DeleteAccount removes the user together with their subscriptions and
// payment history.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.DeleteWithData(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("account deleted", zap.Int64("user_id", userID))
	return nil
}
