package response

import (
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
)

type SagaResponse struct {
	PurchaseID       string     `json:"purchaseId"`
	TransactionID    string     `json:"transactionId,omitempty"`
	PaymentID        string     `json:"paymentId,omitempty"`
	Status           string     `json:"status"`
	AccessURL        string     `json:"accessUrl,omitempty"`
	AccessExpiresAt  *time.Time `json:"accessExpiresAt,omitempty"`
	SlotsDecremented bool       `json:"slotsDecremented"`
	Recovered        bool       `json:"recovered"`
	AlreadyCompleted bool       `json:"alreadyCompleted"`
	Pending          bool       `json:"pending"`
}

func FromSagaResult(r *purchasedto.SagaResult) SagaResponse {
	return SagaResponse{
		PurchaseID:       r.PurchaseID,
		TransactionID:    r.TransactionID,
		PaymentID:        r.PaymentID,
		Status:           string(r.Status),
		AccessURL:        r.AccessURL,
		AccessExpiresAt:  r.AccessExpiresAt,
		SlotsDecremented: r.SlotsDecremented,
		Recovered:        r.Recovered,
		AlreadyCompleted: r.AlreadyCompleted,
		Pending:          r.Pending,
	}
}

type DisputeResponse struct {
	ID                 string    `json:"id"`
	PurchaseID         string    `json:"purchaseId"`
	TransactionID      string    `json:"transactionId"`
	DisputeType        string    `json:"disputeType"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	ResolutionDeadline time.Time `json:"resolutionDeadline"`
	CreatedAt          time.Time `json:"createdAt"`
}

func FromDispute(d *domain.Dispute) *DisputeResponse {
	if d == nil {
		return nil
	}
	return &DisputeResponse{
		ID:                 d.ID,
		PurchaseID:         d.PurchaseID,
		TransactionID:      d.TransactionID,
		DisputeType:        d.DisputeType,
		Description:        d.Description,
		Status:             string(d.Status),
		ResolutionDeadline: d.ResolutionDeadline,
		CreatedAt:          d.CreatedAt,
	}
}

type ConfirmAccessResponse struct {
	PurchaseID        string           `json:"purchaseId"`
	AccessConfirmed   bool             `json:"accessConfirmed"`
	AccessConfirmedAt *time.Time       `json:"accessConfirmedAt,omitempty"`
	Dispute           *DisputeResponse `json:"dispute,omitempty"`
}

func FromConfirmAccess(out *purchasedto.ConfirmAccessOutput) ConfirmAccessResponse {
	return ConfirmAccessResponse{
		PurchaseID:        out.Purchase.ID,
		AccessConfirmed:   out.Purchase.AccessConfirmed,
		AccessConfirmedAt: out.Purchase.AccessConfirmedAt,
		Dispute:           FromDispute(out.Dispute),
	}
}

type AccessResponse struct {
	PurchaseID string    `json:"purchaseId"`
	AccessURL  string    `json:"accessUrl"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type RedeemResponse struct {
	PurchaseID string `json:"purchaseId"`
	Granted    bool   `json:"granted"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
