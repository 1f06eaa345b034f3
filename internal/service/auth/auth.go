// internal/service/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"spendora-service/internal/domain/user"
	xerrors "spendora-service/internal/pkg/errors"
	"spendora-service/internal/pkg/jwt"
	"spendora-service/internal/repository/postgres"
	redisrepo "spendora-service/internal/repository/redis"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users     *postgres.UserRepository
	tokens    *jwt.Manager
	blacklist *redisrepo.TokenBlacklist
	logger    *zap.Logger
}

func NewAuthService(
	users *postgres.UserRepository,
	tokens *jwt.Manager,
	blacklist *redisrepo.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		logger:    logger,
	}
}

// Register creates the account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(err, "hash password")
	}

	u := &user.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, fmt.Errorf("%w: email already registered", xerrors.ErrDuplicateEntry)
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))
	return s.issueToken(u)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	return s.issueToken(u)
}

// Logout blacklists the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return xerrors.ErrUnauthorized
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return xerrors.Wrap(err, "blacklist token")
	}
	return nil
}

// ValidateToken checks signature, expiry and the revocation list. Used by the
// auth middleware and by websocket upgrades.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (int64, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return 0, xerrors.ErrUnauthorized
	}

	revoked, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return 0, xerrors.Wrap(err, "check token blacklist")
	}
	if revoked {
		return 0, xerrors.ErrUnauthorized
	}

	return claims.UserID, nil
}

func (s *AuthService) issueToken(u *user.User) (*user.AuthResponse, error) {
	token, _, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, xerrors.Wrap(err, "sign token")
	}
	return &user.AuthResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Token: token,
	}, nil
}
