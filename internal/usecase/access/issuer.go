package access

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

const tokenBytes = 32

type IssuedToken struct {
	Token     string
	TokenID   string
	AccessURL string
	ExpiresAt time.Time
}

type Issuer struct {
	tokens  domain.AccessTokenRepository
	clock   clock.Clock
	metrics *metrics.SlotMetrics
	cfg     config.AccessConfig
	random  io.Reader
}

func NewIssuer(tokens domain.AccessTokenRepository, clk clock.Clock, m *metrics.SlotMetrics, cfg config.AccessConfig) *Issuer {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Issuer{tokens: tokens, clock: clk, metrics: m, cfg: cfg, random: rand.Reader}
}

// HashToken is the stored form of a raw token: hex SHA-256 of salt followed
// by the token.
func HashToken(salt, token string) string {
	sum := sha256.Sum256([]byte(salt + token))
	return hex.EncodeToString(sum[:])
}

func (i *Issuer) TTL() time.Duration { return i.cfg.TokenTTL }

// Issue mints a single-use token for the purchase. The raw token is only
// returned here and inside AccessURL.
func (i *Issuer) Issue(ctx context.Context, purchaseID, userID string, ttl time.Duration) (*IssuedToken, error) {
	return i.issue(ctx, purchaseID, userID, ttl, i.tokens.CreateAccessToken)
}

// IssueFallback uses the minimal insert path of the store with the same
// hashing. It is meant for the case where Issue failed for a paid purchase.
func (i *Issuer) IssueFallback(ctx context.Context, purchaseID, userID string, ttl time.Duration) (*IssuedToken, error) {
	issued, err := i.issue(ctx, purchaseID, userID, ttl, i.tokens.InsertAccessTokenRaw)
	if err == nil {
		i.metrics.RecordFallbackIssued()
	}
	return issued, err
}

// Revoke expires every unused token of the purchase.
func (i *Issuer) Revoke(ctx context.Context, purchaseID string) error {
	if err := i.tokens.ExpireUnusedTokens(ctx, purchaseID, i.clock.Now()); err != nil {
		return fmt.Errorf("failed to invalidate access tokens: %w", err)
	}
	return nil
}

// Reissue invalidates every unused token of the purchase and mints a new one.
func (i *Issuer) Reissue(ctx context.Context, purchaseID, userID string) (*IssuedToken, error) {
	if err := i.Revoke(ctx, purchaseID); err != nil {
		return nil, err
	}
	return i.Issue(ctx, purchaseID, userID, 0)
}

func (i *Issuer) issue(
	ctx context.Context,
	purchaseID, userID string,
	ttl time.Duration,
	insert func(context.Context, *domain.AccessToken) error,
) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = i.cfg.TokenTTL
	}
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(i.random, raw); err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	token := hex.EncodeToString(raw)

	now := i.clock.Now()
	record := &domain.AccessToken{
		ID:         uuid.New().String(),
		PurchaseID: purchaseID,
		UserID:     userID,
		TokenHash:  HashToken(i.cfg.TokenSalt, token),
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
	}
	if err := insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	return &IssuedToken{
		Token:     token,
		TokenID:   record.ID,
		AccessURL: i.accessURL(purchaseID, token),
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (i *Issuer) accessURL(purchaseID, token string) string {
	q := url.Values{}
	q.Set("id", purchaseID)
	q.Set("token", token)
	return strings.TrimRight(i.cfg.BaseURL, "/") + "/access?" + q.Encode()
}

// Redeem consumes the token and returns the purchase it grants access to.
func (i *Issuer) Redeem(ctx context.Context, token string) (string, error) {
	return i.redeem(ctx, token, "")
}

// RedeemForPurchase also requires the token to belong to purchaseID. A token
// of another purchase is reported as not found and stays unused.
func (i *Issuer) RedeemForPurchase(ctx context.Context, purchaseID, token string) (string, error) {
	return i.redeem(ctx, token, purchaseID)
}

func (i *Issuer) redeem(ctx context.Context, token, purchaseID string) (string, error) {
	if token == "" {
		i.metrics.RecordRedemption("not_found")
		return "", domain.ErrTokenNotFound
	}
	record, err := i.tokens.GetAccessTokenByHash(ctx, HashToken(i.cfg.TokenSalt, token))
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			i.metrics.RecordRedemption("not_found")
			return "", domain.ErrTokenNotFound
		}
		i.metrics.RecordRedemption("error")
		return "", fmt.Errorf("failed to look up access token: %w", err)
	}
	if purchaseID != "" && record.PurchaseID != purchaseID {
		i.metrics.RecordRedemption("not_found")
		return "", domain.ErrTokenNotFound
	}
	if record.Used {
		i.metrics.RecordRedemption("already_used")
		return "", domain.ErrTokenAlreadyUsed
	}
	now := i.clock.Now()
	if !now.Before(record.ExpiresAt) {
		i.metrics.RecordRedemption("expired")
		return "", domain.ErrTokenExpired
	}

	consumed, err := i.tokens.ConsumeAccessToken(ctx, record.ID, now)
	if err != nil {
		i.metrics.RecordRedemption("error")
		return "", fmt.Errorf("failed to consume access token: %w", err)
	}
	if !consumed {
		i.metrics.RecordRedemption("already_used")
		return "", domain.ErrTokenAlreadyUsed
	}

	i.metrics.RecordRedemption("ok")
	slog.Info("access token redeemed", "purchase_id", record.PurchaseID, "token_id", record.ID)
	return record.PurchaseID, nil
}

// PurgeExpired deletes tokens that expired more than retention ago.
func (i *Issuer) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := i.tokens.DeleteExpiredTokens(ctx, i.clock.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired access tokens: %w", err)
	}
	return n, nil
}
