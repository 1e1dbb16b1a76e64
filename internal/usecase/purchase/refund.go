package purchase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
)

// Refund closes a completed purchase: the slot goes back to the offer and
// unused access tokens stop working. Money movement is the provider's job.
func (uc *DefaultPurchaseUsecase) Refund(ctx context.Context, purchaseID string) (*purchasedto.SagaResult, error) {
	if _, err := uc.purchases.GetPurchaseByID(ctx, purchaseID); err != nil {
		return nil, err
	}
	release, err := uc.acquireLease(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	defer release()
	purchase, err := uc.purchases.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	ok, err := uc.purchases.TransitionStatus(ctx, purchase.ID, domain.PurchaseCompleted, domain.PurchaseRefunded)
	if err != nil {
		return nil, fmt.Errorf("failed to refund purchase: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: only completed purchases can be refunded, purchase is %s", domain.ErrInvalidPurchaseState, purchase.Status)
	}
	ctx = context.WithoutCancel(ctx)
	purchase.Status = domain.PurchaseRefunded

	result := &purchasedto.SagaResult{PurchaseID: purchase.ID, Status: domain.PurchaseRefunded}
	r := &sagaRun{purchase: purchase, result: result}
	if tx, err := uc.transactions.GetLatestTransactionByPurchaseID(ctx, purchase.ID); err == nil {
		r.tx = tx
		result.TransactionID = tx.ID
		result.PaymentID = tx.PaymentID
	}

	if purchase.SlotsDecremented {
		if err := uc.purchases.ReleaseSlotsDecrement(ctx, purchase.ID); err != nil {
			slog.Error("failed to clear slot flag on refund", "purchase_id", purchase.ID, "error", err)
		} else if !uc.slots.Restore(ctx, purchase.OfferID) {
			slog.Error("slot not restored on refund", "purchase_id", purchase.ID, "offer_id", purchase.OfferID)
		}
	}
	if err := uc.tokens.Revoke(ctx, purchase.ID); err != nil {
		slog.Error("failed to revoke access tokens on refund", "purchase_id", purchase.ID, "error", err)
	}

	uc.notifier.Create(ctx, notification.CreateInput{
		UserID:            purchase.UserID,
		Type:              domain.NotificationPurchaseRefunded,
		Title:             "Purchase refunded",
		Content:           "Your purchase was refunded and your access has been revoked.",
		RelatedEntityType: domain.EntityPurchase,
		RelatedEntityID:   purchase.ID,
		Priority:          domain.PriorityNormal,
	})
	uc.metrics.RecordPurchase("refunded")
	uc.publish(ctx, r, domain.PurchaseRefunded)
	slog.Info("purchase refunded", "purchase_id", purchase.ID)
	return result, nil
}
