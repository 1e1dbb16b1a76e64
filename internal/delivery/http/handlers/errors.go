package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	purchaseResponse "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/purchase/response"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrInvalidSignature, http.StatusUnauthorized, "invalid_signature"},
	{domain.ErrNotPurchaseOwner, http.StatusForbidden, "forbidden"},
	{domain.ErrPurchaseNotFound, http.StatusNotFound, "purchase_not_found"},
	{domain.ErrOfferNotFound, http.StatusNotFound, "offer_not_found"},
	{domain.ErrTransactionNotFound, http.StatusNotFound, "transaction_not_found"},
	{domain.ErrTokenNotFound, http.StatusNotFound, "token_not_found"},
	{domain.ErrDisputeNotFound, http.StatusNotFound, "dispute_not_found"},
	{domain.ErrInvalidPurchaseState, http.StatusConflict, "invalid_purchase_state"},
	{domain.ErrSagaInProgress, http.StatusConflict, "saga_in_progress"},
	{domain.ErrOfferNotActive, http.StatusConflict, "offer_not_active"},
	{domain.ErrNoSlotsAvailable, http.StatusConflict, "no_slots_available"},
	{domain.ErrAccessNotProvided, http.StatusConflict, "access_not_provided"},
	{domain.ErrAccessAlreadyConfirmed, http.StatusConflict, "access_already_confirmed"},
	{domain.ErrTokenAlreadyUsed, http.StatusConflict, "token_already_used"},
	{domain.ErrTokenExpired, http.StatusGone, "token_expired"},
	{domain.ErrPaymentFailed, http.StatusPaymentRequired, "payment_failed"},
	{domain.ErrInvalidPaymentEvent, http.StatusBadRequest, "invalid_payment_event"},
}

func writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			c.AbortWithStatusJSON(m.status, purchaseResponse.ErrorResponse{Error: m.target.Error(), Code: m.code})
			return
		}
	}
	slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, purchaseResponse.ErrorResponse{
		Error: "internal error",
		Code:  "internal",
	})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, purchaseResponse.ErrorResponse{Error: err.Error(), Code: "bad_request"})
}
