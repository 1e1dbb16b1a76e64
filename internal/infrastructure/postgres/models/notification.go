package models

import "time"

type NotificationModel struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"index:idx_notifications_user_created"`
	Type              string
	Title             string
	Content           string
	RelatedEntityType string
	RelatedEntityID   string
	Priority          string
	IsRead            bool
	CreatedAt         time.Time `gorm:"index:idx_notifications_user_created"`
}

func (NotificationModel) TableName() string { return "notifications" }
