package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService([]byte("secret"), time.Hour)

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	sub, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokenLifetimeMatchesTTL(t *testing.T) {
	svc := NewJWTService([]byte("secret"), 90*time.Minute)
	assert.Equal(t, 90*time.Minute, svc.TTL())

	raw, err := svc.GenerateToken("user-1")
	require.NoError(t, err)
	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, svc.TTL(), exp.Sub(iat.Time))
}

func TestExpiredToken(t *testing.T) {
	svc := NewJWTService([]byte("secret"), time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewJWTService([]byte("one"), time.Hour).GenerateToken("u")
	require.NoError(t, err)

	_, err = NewJWTService([]byte("two"), time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTService([]byte("secret"), time.Hour).ValidateToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingSubject(t *testing.T) {
	secret := []byte("secret")
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = NewJWTService(secret, time.Hour).ValidateToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
