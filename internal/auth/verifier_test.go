package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	signed := mintToken(t, "test-secret", jwt.MapClaims{
		"sub":   "user-1",
		"name":  "Alice",
		"photo": "a.png",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	identity, err := verifier.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UID)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "a.png", identity.Photo)
}

func TestVerifyWrongSecretFails(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	signed := mintToken(t, "other-secret", jwt.MapClaims{"sub": "user-1"})

	_, err := verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredTokenFails(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	signed := mintToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyMissingSubjectFails(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	signed := mintToken(t, "test-secret", jwt.MapClaims{"name": "Alice"})

	_, err := verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbageFails(t *testing.T) {
	verifier := NewJWTVerifier("test-secret")
	_, err := verifier.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
