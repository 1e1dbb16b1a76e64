package models

import (
	"time"
)

type DisputeModel struct {
	ID                 string `gorm:"primaryKey"`
	ReporterID         string
	ReportedEntityType string
	ReportedEntityID   string
	TransactionID      string
	PurchaseID         string `gorm:"index"`
	Purchase           PurchaseModel `gorm:"foreignKey:PurchaseID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	DisputeType        string
	Description        string
	Status             string
	ResolutionDeadline time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (DisputeModel) TableName() string { return "disputes" }
