package repository

import (
	"context"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultTransactionRepository struct {
	db *gorm.DB
}

func NewDefaultTransactionRepository(db *gorm.DB) *DefaultTransactionRepository {
	return &DefaultTransactionRepository{db: db}
}

func (r *DefaultTransactionRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(mappers.ToGORMTransaction(tx)).Error
}

func (r *DefaultTransactionRepository) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	if err := r.db.WithContext(ctx).Where("id = ?", transactionID).First(&txModel).Error; err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) GetLatestTransactionByPurchaseID(ctx context.Context, purchaseID string) (*domain.Transaction, error) {
	var txModel models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at DESC").
		Take(&txModel).Error; err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return mappers.ToDomainTransaction(&txModel), nil
}

func (r *DefaultTransactionRepository) ClaimCharge(ctx context.Context, transactionID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("id = ? AND status = ?", transactionID, string(domain.TransactionPending)).
		Update("status", string(domain.TransactionCharging))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultTransactionRepository) CompleteTransaction(ctx context.Context, transactionID, paymentID string) error {
	return r.setStatus(ctx, transactionID, map[string]any{
		"status":     string(domain.TransactionCompleted),
		"payment_id": paymentID,
	})
}

func (r *DefaultTransactionRepository) FailTransaction(ctx context.Context, transactionID string) error {
	return r.setStatus(ctx, transactionID, map[string]any{
		"status": string(domain.TransactionFailed),
	})
}

func (r *DefaultTransactionRepository) setStatus(ctx context.Context, transactionID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.TransactionModel{}).
		Where("id = ?", transactionID).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
