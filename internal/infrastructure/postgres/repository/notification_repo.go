package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewDefaultNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (r *DefaultNotificationRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	err := r.db.WithContext(ctx).Create(mappers.ToGORMNotification(n)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrNotificationExists
	}
	return err
}

func (r *DefaultNotificationRepository) FindRecentForEntity(ctx context.Context, userID string, nType domain.NotificationType, entityType, entityID string, since time.Time) ([]*domain.Notification, error) {
	var notificationModels []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, string(nType)).
		Where("related_entity_type = ? AND related_entity_id = ?", entityType, entityID).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&notificationModels).Error; err != nil {
		return nil, err
	}
	return toDomainNotifications(notificationModels), nil
}

func (r *DefaultNotificationRepository) ListNotifications(ctx context.Context, userID string, filter domain.NotificationFilter) ([]*domain.Notification, int64, error) {
	scope := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.NotificationModel{}).Where("user_id = ?", userID)
		if filter.Type != nil {
			query = query.Where("type = ?", string(*filter.Type))
		}
		if filter.Read != nil {
			query = query.Where("is_read = ?", *filter.Read)
		}
		if filter.Priority != nil {
			query = query.Where("priority = ?", string(*filter.Priority))
		}
		if filter.RelatedEntityType != nil {
			query = query.Where("related_entity_type = ?", *filter.RelatedEntityType)
		}
		if filter.RelatedEntityID != nil {
			query = query.Where("related_entity_id = ?", *filter.RelatedEntityID)
		}
		return query
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count failed: %w", err)
	}

	var notificationModels []models.NotificationModel
	if err := scope().
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&notificationModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find notifications: %w", err)
	}

	return toDomainNotifications(notificationModels), total, nil
}

func (r *DefaultNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&total).Error
	return total, err
}

func (r *DefaultNotificationRepository) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	return r.markRead(r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids))
}

func (r *DefaultNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return r.markRead(r.db.WithContext(ctx).Where("user_id = ? AND is_read = ?", userID, false))
}

func (r *DefaultNotificationRepository) MarkEntityRead(ctx context.Context, userID, entityType, entityID string) (int64, error) {
	return r.markRead(r.db.WithContext(ctx).
		Where("user_id = ? AND related_entity_type = ? AND related_entity_id = ?", userID, entityType, entityID))
}

func (r *DefaultNotificationRepository) markRead(query *gorm.DB) (int64, error) {
	result := query.Model(&models.NotificationModel{}).Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *DefaultNotificationRepository) DeleteNotifications(ctx context.Context, userID string, ids []string) (int64, error) {
	return r.delete(r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids))
}

func (r *DefaultNotificationRepository) DeleteAllNotifications(ctx context.Context, userID string) (int64, error) {
	return r.delete(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *DefaultNotificationRepository) DeleteReadNotifications(ctx context.Context, userID string) (int64, error) {
	return r.delete(r.db.WithContext(ctx).Where("user_id = ? AND is_read = ?", userID, true))
}

func (r *DefaultNotificationRepository) DeleteEntityNotifications(ctx context.Context, userID, entityType, entityID string) (int64, error) {
	return r.delete(r.db.WithContext(ctx).
		Where("user_id = ? AND related_entity_type = ? AND related_entity_id = ?", userID, entityType, entityID))
}

func (r *DefaultNotificationRepository) delete(query *gorm.DB) (int64, error) {
	result := query.Delete(&models.NotificationModel{})
	return result.RowsAffected, result.Error
}

func toDomainNotifications(notificationModels []models.NotificationModel) []*domain.Notification {
	notifications := make([]*domain.Notification, len(notificationModels))
	for i := range notificationModels {
		notifications[i] = mappers.ToDomainNotification(&notificationModels[i])
	}
	return notifications
}
