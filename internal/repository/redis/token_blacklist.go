// internal/repository/redis/token_blacklist.go
package redisrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes individual JWTs by jti until they would have
// expired anyway.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(client *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{client: client}
}

func (b *TokenBlacklist) key(jti string) string {
	return "auth:blacklist:" + jti
}

// Add revokes a token for the remainder of its lifetime.
func (b *TokenBlacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.key(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// Contains reports whether a jti has been revoked.
func (b *TokenBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}
