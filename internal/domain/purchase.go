package domain

import (
	"context"
	"time"
)

type PurchaseStatus string

const (
	PurchasePendingPayment    PurchaseStatus = "pending_payment"
	PurchasePaymentProcessing PurchaseStatus = "payment_processing"
	PurchaseCompleted         PurchaseStatus = "completed"
	PurchaseFailed            PurchaseStatus = "failed"
	PurchaseRefunded          PurchaseStatus = "refunded"
)

type Purchase struct {
	ID                string
	UserID            string
	OfferID           string
	Status            PurchaseStatus
	AccessProvided    bool
	AccessConfirmed   bool
	AccessConfirmedAt *time.Time
	SlotsDecremented  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

type PurchaseRepository interface {
	GetPurchaseByID(ctx context.Context, purchaseID string) (*Purchase, error)
	UpdatePurchaseStatus(ctx context.Context, purchaseID string, status PurchaseStatus) error
	// TransitionStatus moves the purchase from one status to another only if it
	// is still in the expected status.
	TransitionStatus(ctx context.Context, purchaseID string, from, to PurchaseStatus) (bool, error)
	MarkPurchaseCompleted(ctx context.Context, purchaseID string, completedAt time.Time) error
	// ClaimSlotsDecrement flips slots_decremented false -> true. Only the caller
	// that wins the claim may touch the offer counter.
	ClaimSlotsDecrement(ctx context.Context, purchaseID string) (bool, error)
	ReleaseSlotsDecrement(ctx context.Context, purchaseID string) error
	MarkAccessConfirmed(ctx context.Context, purchaseID string, at time.Time) (bool, error)
	ResetAccessConfirmation(ctx context.Context, purchaseID string) error
	// AcquireSagaLease hands owner the exclusive right to run the saga of the
	// purchase until the given time. It fails while another owner holds a
	// lease that has not expired at now.
	AcquireSagaLease(ctx context.Context, purchaseID, owner string, now, until time.Time) (bool, error)
	ReleaseSagaLease(ctx context.Context, purchaseID, owner string) error
}
