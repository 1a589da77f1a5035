package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyRoundTrip(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign("42", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	subject, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "42", subject)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token, err := v.Sign("42", jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTVerifier("other-secret").Sign("42", nil)
	require.NoError(t, err)

	_, err = NewJWTVerifier("test-secret").Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsUnexpectedAlgorithm(t *testing.T) {
	v := NewJWTVerifier("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "42",
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = v.Verify(signed)
	assert.Error(t, err)
}
