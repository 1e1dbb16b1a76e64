package handlers

import (
	"context"
	"net/http"

	purchaseRequest "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/purchase/request"
	purchaseResponse "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/purchase/response"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/purchase"
	"github.com/gin-gonic/gin"
)

type TokenRedeemer interface {
	RedeemForPurchase(ctx context.Context, purchaseID, token string) (string, error)
}

type DisputeLister interface {
	ListForPurchase(ctx context.Context, purchaseID string) ([]*domain.Dispute, error)
}

type PurchaseHandler struct {
	purchases purchase.PurchaseUsecase
	tokens    TokenRedeemer
	disputes  DisputeLister
}

func NewPurchaseHandler(purchases purchase.PurchaseUsecase, tokens TokenRedeemer, disputes DisputeLister) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases, tokens: tokens, disputes: disputes}
}

func (h *PurchaseHandler) Pay(c *gin.Context) {
	result, err := h.purchases.ProcessPayment(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if result.Pending {
		status = http.StatusAccepted
	}
	c.JSON(status, purchaseResponse.FromSagaResult(result))
}

func (h *PurchaseHandler) ConfirmAccess(c *gin.Context) {
	var req purchaseRequest.ConfirmAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	out, err := h.purchases.ConfirmAccess(c.Request.Context(), &purchasedto.ConfirmAccessInput{
		PurchaseID:  c.Param("id"),
		UserID:      currentUser(c),
		IsWorking:   *req.IsWorking,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseResponse.FromConfirmAccess(out))
}

func (h *PurchaseHandler) ReissueAccess(c *gin.Context) {
	out, err := h.purchases.ReissueAccess(c.Request.Context(), c.Param("id"), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchaseResponse.AccessResponse{
		PurchaseID: out.PurchaseID,
		AccessURL:  out.AccessURL,
		ExpiresAt:  out.ExpiresAt,
	})
}

// ListDisputes returns the disputes the caller opened on the purchase.
func (h *PurchaseHandler) ListDisputes(c *gin.Context) {
	disputes, err := h.disputes.ListForPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	userID := currentUser(c)
	out := make([]*purchaseResponse.DisputeResponse, 0, len(disputes))
	for _, d := range disputes {
		if d.ReporterID == userID {
			out = append(out, purchaseResponse.FromDispute(d))
		}
	}
	c.JSON(http.StatusOK, gin.H{"disputes": out})
}

// Redeem is the target of the access link, so it is not behind Identity.
func (h *PurchaseHandler) Redeem(c *gin.Context) {
	purchaseID, err := h.tokens.RedeemForPurchase(c.Request.Context(), c.Query("id"), c.Query("token"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseResponse.RedeemResponse{PurchaseID: purchaseID, Granted: true})
}

func (h *PurchaseHandler) Refund(c *gin.Context) {
	result, err := h.purchases.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseResponse.FromSagaResult(result))
}

func (h *PurchaseHandler) PaymentWebhook(c *gin.Context) {
	var req purchaseRequest.PaymentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.purchases.HandlePaymentEvent(c.Request.Context(), domain.PaymentEvent{
		TransactionID: req.TransactionID,
		Status:        domain.PaymentStatus(req.Status),
		PaymentID:     req.PaymentID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchaseResponse.FromSagaResult(result))
}
