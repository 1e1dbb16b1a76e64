package publisher

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseEvent struct {
	PurchaseID    string          `json:"purchase_id"`
	TransactionID string          `json:"transaction_id"`
	OfferID       string          `json:"offer_id"`
	BuyerID       string          `json:"buyer_id"`
	SellerID      string          `json:"seller_id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	Recovered     bool            `json:"recovered"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
