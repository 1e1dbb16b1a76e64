package domain

import (
	"context"
	"time"
)

type DisputeStatus string

const (
	DisputeOpened   DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
	DisputeRejected DisputeStatus = "rejected"
)

const DisputeAccessNotWorking = "access_not_working"

type Dispute struct {
	ID                 string
	ReporterID         string
	ReportedEntityType string
	ReportedEntityID   string
	TransactionID      string
	PurchaseID         string
	DisputeType        string
	Description        string
	Status             DisputeStatus
	ResolutionDeadline time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type DisputeRepository interface {
	CreateDispute(ctx context.Context, dispute *Dispute) error
	GetDisputeByID(ctx context.Context, disputeID string) (*Dispute, error)
	GetDisputesByPurchaseID(ctx context.Context, purchaseID string) ([]*Dispute, error)
}
