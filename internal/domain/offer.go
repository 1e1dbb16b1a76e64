package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OfferStatus string

const (
	OfferActive   OfferStatus = "active"
	OfferInactive OfferStatus = "inactive"
	OfferPaused   OfferStatus = "paused"
)

type Offer struct {
	ID             string
	OwnerID        string
	GroupID        string
	Title          string
	SlotsTotal     int
	SlotsAvailable *int // nil when the column was never initialised
	PricePerSlot   decimal.Decimal
	Status         OfferStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OfferRepository interface {
	GetOfferByID(ctx context.Context, offerID string) (*Offer, error)
	// CompareAndSetSlots writes next only while the stored counter still equals
	// observed (nil matches NULL). Reports whether the row was updated.
	CompareAndSetSlots(ctx context.Context, offerID string, observed *int, next int) (bool, error)
	// IncrementSlots adds one slot back, never exceeding slots_total.
	IncrementSlots(ctx context.Context, offerID string) (bool, error)
}
