package publisher

import "time"

type DisputeEvent struct {
	DisputeID          string    `json:"dispute_id"`
	PurchaseID         string    `json:"purchase_id"`
	TransactionID      string    `json:"transaction_id"`
	OfferID            string    `json:"offer_id"`
	ReporterID         string    `json:"reporter_id"`
	SellerID           string    `json:"seller_id"`
	DisputeType        string    `json:"dispute_type"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	ResolutionDeadline time.Time `json:"resolution_deadline"`
}
