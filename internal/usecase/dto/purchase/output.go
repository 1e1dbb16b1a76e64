package purchasedto

import (
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
)

// SagaResult describes where a purchase ended up after a saga run.
type SagaResult struct {
	PurchaseID       string
	TransactionID    string
	PaymentID        string
	Status           domain.PurchaseStatus
	AccessURL        string
	TokenID          string
	AccessExpiresAt  *time.Time
	SlotsDecremented bool
	// Recovered is set when a step after payment failed or was missing and
	// the saga completed it in degraded mode.
	Recovered        bool
	AlreadyCompleted bool
	// Pending means the provider will report the payment result later.
	Pending bool
}

type ConfirmAccessOutput struct {
	Purchase *domain.Purchase
	Dispute  *domain.Dispute
}

type AccessOutput struct {
	PurchaseID string
	TokenID    string
	AccessURL  string
	ExpiresAt  time.Time
}
