package response

import (
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
)

type NotificationResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	RelatedEntityType string    `json:"relatedEntityType,omitempty"`
	RelatedEntityID   string    `json:"relatedEntityId,omitempty"`
	Priority          string    `json:"priority"`
	IsRead            bool      `json:"isRead"`
	CreatedAt         time.Time `json:"createdAt"`
}

type ListResponse struct {
	Notifications []NotificationResponse   `json:"notifications"`
	Pagination    notification.Pagination `json:"pagination"`
}

func FromPage(page *notification.Page) ListResponse {
	items := make([]NotificationResponse, 0, len(page.Notifications))
	for _, n := range page.Notifications {
		items = append(items, FromNotification(n))
	}
	return ListResponse{Notifications: items, Pagination: page.Pagination}
}

func FromNotification(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:                n.ID,
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

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
