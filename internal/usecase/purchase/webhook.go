package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
)

// HandlePaymentEvent applies an asynchronous payment result. Replays of the
// same event are harmless. While another run holds the purchase it returns
// ErrSagaInProgress and the event has to be delivered again.
func (uc *DefaultPurchaseUsecase) HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) (*purchasedto.SagaResult, error) {
	if event.TransactionID == "" {
		return nil, fmt.Errorf("%w: missing transactionId", domain.ErrInvalidPaymentEvent)
	}
	tx, err := uc.transactions.GetTransactionByID(ctx, event.TransactionID)
	if err != nil {
		return nil, err
	}
	release, err := uc.acquireLease(ctx, tx.PurchaseID)
	if err != nil {
		return nil, err
	}
	defer release()
	if tx, err = uc.transactions.GetTransactionByID(ctx, event.TransactionID); err != nil {
		return nil, err
	}
	purchase, err := uc.purchases.GetPurchaseByID(ctx, tx.PurchaseID)
	if err != nil {
		return nil, err
	}

	switch event.Status {
	case domain.PaymentStatusCompleted:
		return uc.applyPaymentCompleted(ctx, purchase, tx, event.PaymentID)
	case domain.PaymentStatusFailed:
		return uc.applyPaymentFailed(ctx, purchase, tx)
	default:
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidPaymentEvent, event.Status)
	}
}

func (uc *DefaultPurchaseUsecase) applyPaymentCompleted(ctx context.Context, purchase *domain.Purchase, tx *domain.Transaction, paymentID string) (*purchasedto.SagaResult, error) {
	started := time.Now()
	if purchase.Status == domain.PurchaseFailed || purchase.Status == domain.PurchaseRefunded {
		slog.Error("payment completed for a closed purchase",
			"purchase_id", purchase.ID, "transaction_id", tx.ID, "status", purchase.Status, "payment_id", paymentID)
		return nil, fmt.Errorf("%w: purchase is %s", domain.ErrInvalidPurchaseState, purchase.Status)
	}

	ctx = context.WithoutCancel(ctx)
	if tx.Status == domain.TransactionPending || tx.Status == domain.TransactionCharging {
		if err := uc.transactions.CompleteTransaction(ctx, tx.ID, paymentID); err != nil {
			return nil, fmt.Errorf("failed to complete transaction: %w", err)
		}
	}
	if purchase.Status == domain.PurchasePendingPayment {
		if _, err := uc.purchases.TransitionStatus(ctx, purchase.ID, domain.PurchasePendingPayment, domain.PurchasePaymentProcessing); err != nil {
			return nil, fmt.Errorf("failed to move purchase to processing: %w", err)
		}
		purchase.Status = domain.PurchasePaymentProcessing
	}

	now := uc.clock.Now()
	for _, s := range []domain.SagaStep{domain.StepTransactionCreated, domain.StepPaymentProcessed} {
		if err := uc.steps.MarkStepCompleted(ctx, purchase.ID, s, now); err != nil {
			return nil, fmt.Errorf("failed to record saga step: %w", err)
		}
	}
	return uc.resumeSaga(ctx, purchase, "webhook", started)
}

func (uc *DefaultPurchaseUsecase) applyPaymentFailed(ctx context.Context, purchase *domain.Purchase, tx *domain.Transaction) (*purchasedto.SagaResult, error) {
	result := &purchasedto.SagaResult{PurchaseID: purchase.ID, TransactionID: tx.ID, Status: purchase.Status}
	switch purchase.Status {
	case domain.PurchaseCompleted, domain.PurchaseRefunded:
		slog.Warn("ignoring payment failure for a settled purchase", "purchase_id", purchase.ID, "transaction_id", tx.ID)
		result.AlreadyCompleted = purchase.Status == domain.PurchaseCompleted
		return result, nil
	case domain.PurchaseFailed:
		return result, nil
	}

	ctx = context.WithoutCancel(ctx)
	r := &sagaRun{purchase: purchase, tx: tx, result: result}
	_ = uc.fail(ctx, r, domain.ErrPaymentFailed)
	result.Status = domain.PurchaseFailed
	return result, nil
}
