package domain

import "context"

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentEvent is the decoded payment provider notification.
type PaymentEvent struct {
	TransactionID string        `json:"transactionId"`
	Status        PaymentStatus `json:"status"`
	PaymentID     string        `json:"paymentId"`
}

// PaymentGateway charges the buyer for a pending transaction. Implementations
// must treat the transaction id as an idempotency key. ErrPaymentPending means
// the provider accepted the charge and will report the result asynchronously.
type PaymentGateway interface {
	Charge(ctx context.Context, tx *Transaction) (paymentID string, err error)
}
