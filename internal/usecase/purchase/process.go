package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
)

// ProcessPayment drives a purchase through the saga. A purchase that is
// already paid or half-way through is resumed from its first missing step.
func (uc *DefaultPurchaseUsecase) ProcessPayment(ctx context.Context, purchaseID, userID string) (*purchasedto.SagaResult, error) {
	started := time.Now()

	purchase, err := uc.purchases.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, domain.ErrNotPurchaseOwner
	}

	release, err := uc.acquireLease(ctx, purchase.ID)
	if err != nil {
		return nil, err
	}
	defer release()
	// Re-read under the lease, the previous holder may have moved it on.
	purchase, err = uc.purchases.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	switch purchase.Status {
	case domain.PurchasePendingPayment:
		return uc.startSaga(ctx, purchase, started)
	case domain.PurchasePaymentProcessing, domain.PurchaseCompleted:
		return uc.resumeSaga(ctx, purchase, "resume", started)
	default:
		return nil, fmt.Errorf("%w: purchase is %s", domain.ErrInvalidPurchaseState, purchase.Status)
	}
}

func (uc *DefaultPurchaseUsecase) loadActiveOffer(ctx context.Context, offerID string) (*domain.Offer, error) {
	offer, err := uc.offers.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != domain.OfferActive {
		return nil, fmt.Errorf("%w: offer is %s", domain.ErrOfferNotActive, offer.Status)
	}
	return offer, nil
}

func (uc *DefaultPurchaseUsecase) startSaga(ctx context.Context, purchase *domain.Purchase, started time.Time) (*purchasedto.SagaResult, error) {
	offer, err := uc.loadActiveOffer(ctx, purchase.OfferID)
	if err != nil {
		return nil, err
	}

	claimed, err := uc.purchases.TransitionStatus(ctx, purchase.ID, domain.PurchasePendingPayment, domain.PurchasePaymentProcessing)
	if err != nil {
		return nil, fmt.Errorf("failed to claim purchase: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: purchase is already being processed", domain.ErrInvalidPurchaseState)
	}
	purchase.Status = domain.PurchasePaymentProcessing

	// From here on the saga runs to completion or to its failure path even if
	// the caller goes away.
	ctx = context.WithoutCancel(ctx)
	r, err := uc.newRun(ctx, purchase, offer)
	if err != nil {
		return nil, uc.fail(ctx, &sagaRun{purchase: purchase, result: &purchasedto.SagaResult{PurchaseID: purchase.ID}}, err)
	}
	slog.Info("purchase saga started", "purchase_id", purchase.ID, "offer_id", offer.ID, "user_id", purchase.UserID)
	return uc.finish(ctx, r, uc.execute(ctx, r), "process", started)
}

func (uc *DefaultPurchaseUsecase) resumeSaga(ctx context.Context, purchase *domain.Purchase, entry string, started time.Time) (*purchasedto.SagaResult, error) {
	// An offer paused after payment must not block fulfilment.
	offer, err := uc.offers.GetOfferByID(ctx, purchase.OfferID)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	r, err := uc.newRun(ctx, purchase, offer)
	if err != nil {
		return nil, err
	}

	missing := false
	for _, s := range uc.pipeline() {
		if !r.done(s.name) {
			missing = true
			break
		}
	}
	if !missing {
		if err := uc.loadTransaction(ctx, r); err != nil {
			slog.Warn("completed purchase without transaction", "purchase_id", purchase.ID, "error", err)
		}
		r.result.Status = domain.PurchaseCompleted
		r.result.AlreadyCompleted = true
		uc.metrics.RecordPurchase("already_completed")
		return r.result, nil
	}

	if r.done(domain.StepTransactionCreated) {
		if err := uc.loadTransaction(ctx, r); err != nil {
			return nil, err
		}
	}
	if entry == "resume" {
		r.result.Recovered = true
	}
	slog.Info("resuming purchase saga", "purchase_id", purchase.ID, "entry", entry, "completed_steps", len(r.completed))
	return uc.finish(ctx, r, uc.execute(ctx, r), entry, started)
}
