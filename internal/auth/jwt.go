package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityResolver turns a bearer token into the caller's user id.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) (*JWTResolver, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &JWTResolver{secret: []byte(secret)}, nil
}

func (r *JWTResolver) Resolve(_ context.Context, tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// GenerateToken signs an HS256 token for userID. Used by tests and local tooling.
func GenerateToken(userID string, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
	})
	return token.SignedString(secret)
}
