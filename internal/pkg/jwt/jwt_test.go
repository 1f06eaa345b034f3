package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		Secret:   "test-secret",
		Issuer:   "spendora",
		Audience: "spendora-users",
		TTL:      time.Hour,
	}
}

func TestGenerateAndVerify(t *testing.T) {
	m, err := NewManager(testConfig())
	require.NoError(t, err)

	token, jti, err := m.Generate(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, jti, claims.ID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m1, err := NewManager(testConfig())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Secret = "other-secret"
	m2, err := NewManager(cfg)
	require.NoError(t, err)

	token, _, err := m1.Generate(1)
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	m, err := NewManager(cfg)
	require.NoError(t, err)

	token, _, err := m.Generate(1)
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager(Config{})
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m, err := NewManager(testConfig())
	require.NoError(t, err)

	_, err = m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
