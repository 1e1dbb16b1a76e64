package mappers

import (
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/models"
)

func ToDomainAccessToken(model *models.AccessTokenModel) *domain.AccessToken {
	return &domain.AccessToken{
		ID:         model.ID,
		PurchaseID: model.PurchaseID,
		UserID:     model.UserID,
		TokenHash:  model.TokenHash,
		ExpiresAt:  model.ExpiresAt,
		Used:       model.Used,
		UsedAt:     model.UsedAt,
		CreatedAt:  model.CreatedAt,
	}
}

func ToGORMAccessToken(token *domain.AccessToken) *models.AccessTokenModel {
	return &models.AccessTokenModel{
		ID:         token.ID,
		PurchaseID: token.PurchaseID,
		UserID:     token.UserID,
		TokenHash:  token.TokenHash,
		ExpiresAt:  token.ExpiresAt,
		Used:       token.Used,
		UsedAt:     token.UsedAt,
		CreatedAt:  token.CreatedAt,
	}
}

func ToDomainNotification(model *models.NotificationModel) *domain.Notification {
	return &domain.Notification{
		ID:                model.ID,
		UserID:            model.UserID,
		Type:              domain.NotificationType(model.Type),
		Title:             model.Title,
		Content:           model.Content,
		RelatedEntityType: model.RelatedEntityType,
		RelatedEntityID:   model.RelatedEntityID,
		Priority:          domain.Priority(model.Priority),
		IsRead:            model.IsRead,
		CreatedAt:         model.CreatedAt,
	}
}

func ToGORMNotification(n *domain.Notification) *models.NotificationModel {
	return &models.NotificationModel{
		ID:                n.ID,
		UserID:            n.UserID,
		Type:              string(n.Type),
		Title:             n.Title,
		Content:           n.Content,
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		Priority:          string(n.Priority),
		IsRead:            n.IsRead,
		CreatedAt:         n.CreatedAt,
	}
}
