package payment

type ChargeRequest struct {
	TransactionID string `json:"transactionId"`
	PurchaseID    string `json:"purchaseId"`
	BuyerID       string `json:"buyerId"`
	SellerID      string `json:"sellerId"`
	Amount        string `json:"amount"`
}

type ChargeResponse struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
