// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"spendora-service/internal/domain/user"
	xerrors "spendora-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. Returns ErrDuplicateEntry if the email is taken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query, u.Name, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByID retrieves a user by ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByEmail retrieves a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users WHERE email = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// Update persists name, email and password hash.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

// DeleteWithData removes the user together with all owned subscriptions and
// payments in one transaction.
func (r *UserRepository) DeleteWithData(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM payments WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete payments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete subscriptions: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) scanOne(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}
