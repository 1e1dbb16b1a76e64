package request

type ConfirmAccessRequest struct {
	IsWorking   *bool  `json:"is_working" binding:"required"`
	Description string `json:"description"`
}

// PaymentEventRequest is the body of the payment provider webhook.
type PaymentEventRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Status        string `json:"status" binding:"required"`
	PaymentID     string `json:"paymentId"`
}
