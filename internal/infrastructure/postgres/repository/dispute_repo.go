package repository

import (
	"context"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultDisputeRepository struct {
	db *gorm.DB
}

func NewDefaultDisputeRepository(db *gorm.DB) *DefaultDisputeRepository {
	return &DefaultDisputeRepository{db: db}
}

func (r *DefaultDisputeRepository) CreateDispute(ctx context.Context, dispute *domain.Dispute) error {
	disputeModel := mappers.ToGORMDispute(dispute)
	if err := r.db.WithContext(ctx).Omit("Purchase").Create(disputeModel).Error; err != nil {
		return err
	}
	dispute.ID = disputeModel.ID
	return nil
}

func (r *DefaultDisputeRepository) GetDisputeByID(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	var disputeModel models.DisputeModel
	if err := r.db.WithContext(ctx).Where("id = ?", disputeID).First(&disputeModel).Error; err != nil {
		return nil, notFound(err, domain.ErrDisputeNotFound)
	}
	return mappers.ToDomainDispute(&disputeModel), nil
}

func (r *DefaultDisputeRepository) GetDisputesByPurchaseID(ctx context.Context, purchaseID string) ([]*domain.Dispute, error) {
	var disputeModels []models.DisputeModel
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at DESC").
		Find(&disputeModels).Error; err != nil {
		return nil, err
	}
	disputes := make([]*domain.Dispute, len(disputeModels))
	for i := range disputeModels {
		disputes[i] = mappers.ToDomainDispute(&disputeModels[i])
	}
	return disputes, nil
}
