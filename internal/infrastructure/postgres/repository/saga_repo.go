package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultSagaStepRepository struct {
	db *gorm.DB
}

func NewDefaultSagaStepRepository(db *gorm.DB) *DefaultSagaStepRepository {
	return &DefaultSagaStepRepository{db: db}
}

func (r *DefaultSagaStepRepository) GetCompletedSteps(ctx context.Context, purchaseID string) (map[domain.SagaStep]time.Time, error) {
	var stepModels []models.SagaStepModel
	if err := r.db.WithContext(ctx).Where("purchase_id = ?", purchaseID).Find(&stepModels).Error; err != nil {
		return nil, err
	}
	steps := make(map[domain.SagaStep]time.Time, len(stepModels))
	for _, s := range stepModels {
		steps[domain.SagaStep(s.Step)] = s.CompletedAt
	}
	return steps, nil
}

func (r *DefaultSagaStepRepository) MarkStepCompleted(ctx context.Context, purchaseID string, step domain.SagaStep, at time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.SagaStepModel{PurchaseID: purchaseID, Step: string(step), CompletedAt: at}).Error
}

type DefaultGroupMembershipRepository struct {
	db *gorm.DB
}

func NewDefaultGroupMembershipRepository(db *gorm.DB) *DefaultGroupMembershipRepository {
	return &DefaultGroupMembershipRepository{db: db}
}

func (r *DefaultGroupMembershipRepository) AddMember(ctx context.Context, member *domain.GroupMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.GroupMemberModel{
			GroupID:    member.GroupID,
			UserID:     member.UserID,
			PurchaseID: member.PurchaseID,
			JoinedAt:   member.JoinedAt,
		}).Error
}

type DefaultUserDirectory struct {
	db *gorm.DB
}

func NewDefaultUserDirectory(db *gorm.DB) *DefaultUserDirectory {
	return &DefaultUserDirectory{db: db}
}

func (r *DefaultUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
