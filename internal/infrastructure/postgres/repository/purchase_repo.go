package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultPurchaseRepository struct {
	db *gorm.DB
}

func NewDefaultPurchaseRepository(db *gorm.DB) *DefaultPurchaseRepository {
	return &DefaultPurchaseRepository{db: db}
}

func (r *DefaultPurchaseRepository) GetPurchaseByID(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	var purchaseModel models.PurchaseModel
	if err := r.db.WithContext(ctx).Where("id = ?", purchaseID).First(&purchaseModel).Error; err != nil {
		return nil, notFound(err, domain.ErrPurchaseNotFound)
	}
	return mappers.ToDomainPurchase(&purchaseModel), nil
}

func (r *DefaultPurchaseRepository) UpdatePurchaseStatus(ctx context.Context, purchaseID string, status domain.PurchaseStatus) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ?", purchaseID).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

func (r *DefaultPurchaseRepository) TransitionStatus(ctx context.Context, purchaseID string, from, to domain.PurchaseStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ? AND status = ?", purchaseID, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultPurchaseRepository) MarkPurchaseCompleted(ctx context.Context, purchaseID string, completedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ?", purchaseID).
		Updates(map[string]any{
			"status":          string(domain.PurchaseCompleted),
			"access_provided": true,
			"completed_at":    completedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrPurchaseNotFound
	}
	return nil
}

func (r *DefaultPurchaseRepository) ClaimSlotsDecrement(ctx context.Context, purchaseID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ? AND slots_decremented = ?", purchaseID, false).
		Update("slots_decremented", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultPurchaseRepository) ReleaseSlotsDecrement(ctx context.Context, purchaseID string) error {
	return r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ?", purchaseID).
		Update("slots_decremented", false).Error
}

func (r *DefaultPurchaseRepository) MarkAccessConfirmed(ctx context.Context, purchaseID string, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ? AND access_confirmed = ?", purchaseID, false).
		Updates(map[string]any{
			"access_confirmed":    true,
			"access_confirmed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultPurchaseRepository) ResetAccessConfirmation(ctx context.Context, purchaseID string) error {
	return r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ?", purchaseID).
		Updates(map[string]any{
			"access_confirmed":    false,
			"access_confirmed_at": nil,
		}).Error
}

func (r *DefaultPurchaseRepository) AcquireSagaLease(ctx context.Context, purchaseID, owner string, now, until time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ?", purchaseID).
		Where("saga_lease_until IS NULL OR saga_lease_until < ? OR saga_lease_owner = ?", now, owner).
		Updates(map[string]any{
			"saga_lease_owner": owner,
			"saga_lease_until": until,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultPurchaseRepository) ReleaseSagaLease(ctx context.Context, purchaseID, owner string) error {
	return r.db.WithContext(ctx).Model(&models.PurchaseModel{}).
		Where("id = ? AND saga_lease_owner = ?", purchaseID, owner).
		Updates(map[string]any{
			"saga_lease_owner": "",
			"saga_lease_until": nil,
		}).Error
}
