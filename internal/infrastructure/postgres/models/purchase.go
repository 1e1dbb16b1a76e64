package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseModel struct {
	ID                string `gorm:"primaryKey"`
	UserID            string `gorm:"index"`
	OfferID           string
	Offer             OfferModel `gorm:"foreignKey:OfferID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Status            string
	AccessProvided    bool
	AccessConfirmed   bool
	AccessConfirmedAt *time.Time
	SlotsDecremented  bool
	SagaLeaseOwner    string
	SagaLeaseUntil    *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

func (PurchaseModel) TableName() string { return "purchases" }

type TransactionModel struct {
	ID           string `gorm:"primaryKey"`
	BuyerID      string
	SellerID     string
	OfferID      string
	PurchaseID   string          `gorm:"index"`
	Amount       decimal.Decimal `gorm:"type:numeric(18,2)"`
	PlatformFee  decimal.Decimal `gorm:"type:numeric(18,2)"`
	SellerAmount decimal.Decimal `gorm:"type:numeric(18,2)"`
	Status       string
	PaymentID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TransactionModel) TableName() string { return "transactions" }
