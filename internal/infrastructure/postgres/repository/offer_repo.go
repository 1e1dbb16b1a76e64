package repository

import (
	"context"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultOfferRepository struct {
	db *gorm.DB
}

func NewDefaultOfferRepository(db *gorm.DB) *DefaultOfferRepository {
	return &DefaultOfferRepository{db: db}
}

func (r *DefaultOfferRepository) GetOfferByID(ctx context.Context, offerID string) (*domain.Offer, error) {
	var offerModel models.OfferModel
	if err := r.db.WithContext(ctx).Where("id = ?", offerID).First(&offerModel).Error; err != nil {
		return nil, notFound(err, domain.ErrOfferNotFound)
	}
	return mappers.ToDomainOffer(&offerModel), nil
}

func (r *DefaultOfferRepository) CompareAndSetSlots(ctx context.Context, offerID string, observed *int, next int) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.OfferModel{}).Where("id = ?", offerID)
	if observed == nil {
		query = query.Where("slots_available IS NULL")
	} else {
		query = query.Where("slots_available = ?", *observed)
	}
	result := query.Update("slots_available", next)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *DefaultOfferRepository) IncrementSlots(ctx context.Context, offerID string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.OfferModel{}).
		Where("id = ?", offerID).
		Update("slots_available", gorm.Expr("LEAST(COALESCE(slots_available, slots_total) + 1, slots_total)"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
