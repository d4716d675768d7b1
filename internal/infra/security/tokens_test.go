package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceIssueAndValidate(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := svc.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestTokenServiceRejects(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, _, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = svc.Validate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1", Issuer: issuer}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Validate(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceExpiry(t *testing.T) {
	svc, err := NewTokenService("test-secret", time.Minute)
	require.NoError(t, err)

	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.ErrorIs(t, err, ErrEmptySecret)
}
