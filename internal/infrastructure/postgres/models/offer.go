package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OfferModel struct {
	ID             string `gorm:"primaryKey"`
	OwnerID        string `gorm:"index"`
	GroupID        string
	Title          string
	SlotsTotal     int
	SlotsAvailable *int
	PricePerSlot   decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OfferModel) TableName() string { return "offers" }
