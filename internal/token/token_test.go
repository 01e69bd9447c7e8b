package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbenson/userapi/internal/models"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewService("super-secret", time.Hour)

	tok, err := svc.Issue("user-123", "a@x.com", models.RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := NewService("secret", time.Hour)
	svc.ttl = -time.Second

	tok, err := svc.Issue("u1", "u1@x.com", models.RoleUser)
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewService("right-secret", time.Hour).Issue("u2", "u2@x.com", models.RoleUser)
	require.NoError(t, err)

	// Tampered signature must read as invalid, never as expired.
	_, err = NewService("wrong-secret", time.Hour).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.NotErrorIs(t, err, ErrExpired)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewService("k", time.Hour).Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewService_DefaultTTL(t *testing.T) {
	t.Parallel()

	svc := NewService("k", 0)
	assert.Equal(t, DefaultTTL, svc.ttl)
}
