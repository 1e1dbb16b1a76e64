package models

import "time"

type AccessTokenModel struct {
	ID         string `gorm:"primaryKey"`
	PurchaseID string `gorm:"index"`
	UserID     string
	TokenHash  string `gorm:"uniqueIndex"`
	ExpiresAt  time.Time
	Used       bool
	UsedAt     *time.Time
	CreatedAt  time.Time
}

func (AccessTokenModel) TableName() string { return "access_tokens" }

type GroupMemberModel struct {
	GroupID    string `gorm:"primaryKey"`
	UserID     string `gorm:"primaryKey"`
	PurchaseID string
	JoinedAt   time.Time
}

func (GroupMemberModel) TableName() string { return "group_members" }

type SagaStepModel struct {
	PurchaseID  string `gorm:"primaryKey"`
	Step        string `gorm:"primaryKey"`
	CompletedAt time.Time
}

func (SagaStepModel) TableName() string { return "saga_steps" }

// UserModel is owned by the identity service, this service only reads ids.
type UserModel struct {
	ID string `gorm:"primaryKey"`
}

func (UserModel) TableName() string { return "users" }
