package domain

import (
	"context"
	"time"
)

// AccessToken never carries the raw token, only its salted digest.
type AccessToken struct {
	ID         string
	PurchaseID string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Used       bool
	UsedAt     *time.Time
	CreatedAt  time.Time
}

type AccessTokenRepository interface {
	CreateAccessToken(ctx context.Context, token *AccessToken) error
	// InsertAccessTokenRaw is the minimal insert path used when the regular
	// issuance flow fails.
	InsertAccessTokenRaw(ctx context.Context, token *AccessToken) error
	GetAccessTokenByHash(ctx context.Context, tokenHash string) (*AccessToken, error)
	// ConsumeAccessToken marks the token used if nobody did it before.
	ConsumeAccessToken(ctx context.Context, tokenID string, usedAt time.Time) (bool, error)
	ExpireUnusedTokens(ctx context.Context, purchaseID string, at time.Time) error
	DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error)
}
