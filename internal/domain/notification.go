package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationPurchaseCompleted NotificationType = "purchase_completed"
	NotificationPurchaseFailed    NotificationType = "purchase_failed"
	NotificationPurchaseRefunded  NotificationType = "purchase_refunded"
	NotificationSaleCompleted     NotificationType = "sale_completed"
	NotificationDisputeCreated    NotificationType = "dispute_created"
	NotificationDisputeReported   NotificationType = "dispute_reported"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

const (
	EntityPurchase = "purchase"
	EntityOffer    = "offer"
	EntityDispute  = "dispute"
)

type Notification struct {
	ID                string
	UserID            string
	Type              NotificationType
	Title             string
	Content           string
	RelatedEntityType string
	RelatedEntityID   string
	Priority          Priority
	IsRead            bool
	CreatedAt         time.Time
}

type NotificationFilter struct {
	Type              *NotificationType
	Read              *bool
	Priority          *Priority
	RelatedEntityType *string
	RelatedEntityID   *string
	Page              int
	PageSize          int
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	// FindRecentForEntity returns notifications of one type about one entity
	// created at or after since.
	FindRecentForEntity(ctx context.Context, userID string, nType NotificationType, entityType, entityID string, since time.Time) ([]*Notification, error)
	ListNotifications(ctx context.Context, userID string, filter NotificationFilter) ([]*Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	MarkEntityRead(ctx context.Context, userID, entityType, entityID string) (int64, error)
	DeleteNotifications(ctx context.Context, userID string, ids []string) (int64, error)
	DeleteAllNotifications(ctx context.Context, userID string) (int64, error)
	DeleteReadNotifications(ctx context.Context, userID string) (int64, error)
	DeleteEntityNotifications(ctx context.Context, userID, entityType, entityID string) (int64, error)
}

// UserDirectory answers whether a user id is known to the identity provider.
type UserDirectory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}
