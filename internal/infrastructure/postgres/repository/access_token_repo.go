package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultAccessTokenRepository struct {
	db *gorm.DB
}

func NewDefaultAccessTokenRepository(db *gorm.DB) *DefaultAccessTokenRepository {
	return &DefaultAccessTokenRepository{db: db}
}

func (r *DefaultAccessTokenRepository) CreateAccessToken(ctx context.Context, token *domain.AccessToken) error {
	return r.db.WithContext(ctx).Create(mappers.ToGORMAccessToken(token)).Error
}

func (r *DefaultAccessTokenRepository) InsertAccessTokenRaw(ctx context.Context, token *domain.AccessToken) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO access_tokens (id, purchase_id, user_id, token_hash, expires_at, used, created_at)
		 VALUES (?, ?, ?, ?, ?, false, ?)`,
		token.ID, token.PurchaseID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt,
	).Error
}

func (r *DefaultAccessTokenRepository) GetAccessTokenByHash(ctx context.Context, tokenHash string) (*domain.AccessToken, error) {
	var tokenModel models.AccessTokenModel
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&tokenModel).Error; err != nil {
		return nil, notFound(err, domain.ErrTokenNotFound)
	}
	return mappers.ToDomainAccessToken(&tokenModel), nil
}

func (r *DefaultAccessTokenRepository) ConsumeAccessToken(ctx context.Context, tokenID string, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AccessTokenModel{}).
		Where("id = ? AND used = ?", tokenID, false).
		Updates(map[string]any{"used": true, "used_at": usedAt})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultAccessTokenRepository) ExpireUnusedTokens(ctx context.Context, purchaseID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.AccessTokenModel{}).
		Where("purchase_id = ? AND used = ? AND expires_at > ?", purchaseID, false, at).
		Update("expires_at", at).Error
}

func (r *DefaultAccessTokenRepository) DeleteExpiredTokens(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&models.AccessTokenModel{})
	return result.RowsAffected, result.Error
}
