package auth

import (
	"context"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTResolver_RoundTrip(t *testing.T) {
	resolver, err := NewJWTResolver("s3cret")
	require.NoError(t, err)

	token, err := GenerateToken("user-1", []byte("s3cret"), time.Minute)
	require.NoError(t, err)

	userID, err := resolver.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestJWTResolver_Rejects(t *testing.T) {
	resolver, err := NewJWTResolver("s3cret")
	require.NoError(t, err)

	expired, err := GenerateToken("user-1", []byte("s3cret"), -time.Minute)
	require.NoError(t, err)
	wrongKey, err := GenerateToken("user-1", []byte("other"), time.Minute)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject: "user-1",
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":    expired,
		"wrong key":  wrongKey,
		"no subject": noSubject,
		"wrong alg":  wrongAlg,
		"garbage":    "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := resolver.Resolve(context.Background(), token)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestNewJWTResolver_EmptySecret(t *testing.T) {
	_, err := NewJWTResolver("")
	assert.Error(t, err)
}
