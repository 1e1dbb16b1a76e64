package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus of a charge. A charging transaction was sent to the
// provider and its outcome is not known yet.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCharging  TransactionStatus = "charging"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID           string
	BuyerID      string
	SellerID     string
	OfferID      string
	PurchaseID   string
	Amount       decimal.Decimal
	PlatformFee  decimal.Decimal
	SellerAmount decimal.Decimal
	Status       TransactionStatus
	PaymentID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByID(ctx context.Context, transactionID string) (*Transaction, error)
	GetLatestTransactionByPurchaseID(ctx context.Context, purchaseID string) (*Transaction, error)
	// ClaimCharge moves a pending transaction to charging. Only the winner may
	// call the payment gateway.
	ClaimCharge(ctx context.Context, transactionID string) (bool, error)
	CompleteTransaction(ctx context.Context, transactionID, paymentID string) error
	FailTransaction(ctx context.Context, transactionID string) error
}
