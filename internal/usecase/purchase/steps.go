package purchase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// splitAmount returns the platform fee and the seller share of amount.
func splitAmount(amount, feePercent decimal.Decimal) (fee, sellerAmount decimal.Decimal) {
	fee = amount.Mul(feePercent).Div(hundred).Round(2)
	return fee, amount.Sub(fee)
}

func (uc *DefaultPurchaseUsecase) createTransaction(ctx context.Context, r *sagaRun) error {
	// A resumed run reuses the attempt that is still in flight.
	if existing, err := uc.transactions.GetLatestTransactionByPurchaseID(ctx, r.purchase.ID); err == nil && existing.Status != domain.TransactionFailed {
		r.tx = existing
		r.result.TransactionID = existing.ID
		return nil
	}

	amount := r.offer.PricePerSlot
	fee, sellerAmount := splitAmount(amount, uc.feePercent)
	now := uc.clock.Now()
	tx := &domain.Transaction{
		ID:           uuid.New().String(),
		BuyerID:      r.purchase.UserID,
		SellerID:     r.offer.OwnerID,
		OfferID:      r.offer.ID,
		PurchaseID:   r.purchase.ID,
		Amount:       amount,
		PlatformFee:  fee,
		SellerAmount: sellerAmount,
		Status:       domain.TransactionPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.transactions.CreateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	r.tx = tx
	r.result.TransactionID = tx.ID
	return nil
}

// loadTransaction attaches the latest transaction of the purchase to a
// resumed run.
func (uc *DefaultPurchaseUsecase) loadTransaction(ctx context.Context, r *sagaRun) error {
	if r.tx != nil {
		return nil
	}
	tx, err := uc.transactions.GetLatestTransactionByPurchaseID(ctx, r.purchase.ID)
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}
	r.tx = tx
	r.result.TransactionID = tx.ID
	r.result.PaymentID = tx.PaymentID
	return nil
}

func (uc *DefaultPurchaseUsecase) processCharge(ctx context.Context, r *sagaRun) error {
	if err := uc.loadTransaction(ctx, r); err != nil {
		return err
	}
	claimed, err := uc.claimCharge(ctx, r)
	if err != nil || !claimed {
		return err
	}

	paymentID, err := uc.gateway.Charge(ctx, r.tx)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentPending) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrPaymentFailed, err)
	}
	if err := uc.transactions.CompleteTransaction(ctx, r.tx.ID, paymentID); err != nil {
		return fmt.Errorf("failed to complete transaction: %w", err)
	}
	r.tx.Status = domain.TransactionCompleted
	r.tx.PaymentID = paymentID
	r.result.PaymentID = paymentID
	return nil
}

// claimCharge reports whether this run may call the gateway. A transaction
// already sent to the provider is never charged again: its outcome arrives as
// a payment event.
func (uc *DefaultPurchaseUsecase) claimCharge(ctx context.Context, r *sagaRun) (bool, error) {
	switch r.tx.Status {
	case domain.TransactionCompleted:
		return false, nil
	case domain.TransactionFailed:
		return false, domain.ErrPaymentFailed
	case domain.TransactionCharging:
		return false, domain.ErrPaymentPending
	}

	claimed, err := uc.transactions.ClaimCharge(ctx, r.tx.ID)
	if err != nil {
		return false, fmt.Errorf("failed to claim charge: %w", err)
	}
	if claimed {
		r.tx.Status = domain.TransactionCharging
		return true, nil
	}

	current, err := uc.transactions.GetTransactionByID(ctx, r.tx.ID)
	if err != nil {
		return false, fmt.Errorf("failed to reload transaction: %w", err)
	}
	r.tx = current
	r.result.PaymentID = current.PaymentID
	if current.Status == domain.TransactionPending {
		return false, fmt.Errorf("charge claim lost on pending transaction %s", current.ID)
	}
	return uc.claimCharge(ctx, r)
}

func (uc *DefaultPurchaseUsecase) completePurchase(ctx context.Context, r *sagaRun) error {
	if err := uc.loadTransaction(ctx, r); err != nil {
		return err
	}
	if err := uc.purchases.MarkPurchaseCompleted(ctx, r.purchase.ID, uc.clock.Now()); err != nil {
		return fmt.Errorf("failed to mark purchase completed: %w", err)
	}
	r.purchase.Status = domain.PurchaseCompleted
	r.purchase.AccessProvided = true
	uc.metrics.RecordCharge(r.offer.ID, r.tx.Amount.InexactFloat64(), r.tx.PlatformFee.InexactFloat64())
	return nil
}

func (uc *DefaultPurchaseUsecase) joinGroup(ctx context.Context, r *sagaRun) error {
	if r.offer.GroupID == "" {
		return nil
	}
	return uc.groups.AddMember(ctx, &domain.GroupMember{
		GroupID:    r.offer.GroupID,
		UserID:     r.purchase.UserID,
		PurchaseID: r.purchase.ID,
		JoinedAt:   uc.clock.Now(),
	})
}

// resolveSlots decrements the offer at most once per purchase. The
// slots_decremented claim is taken before touching the counter and handed
// back when no slot could be taken.
func (uc *DefaultPurchaseUsecase) resolveSlots(ctx context.Context, r *sagaRun) error {
	claimed, err := uc.purchases.ClaimSlotsDecrement(ctx, r.purchase.ID)
	if err != nil {
		return fmt.Errorf("failed to claim slot decrement: %w", err)
	}
	if !claimed {
		r.result.SlotsDecremented = true
		return nil
	}
	if !uc.slots.Decrement(ctx, r.offer.ID) {
		if err := uc.purchases.ReleaseSlotsDecrement(ctx, r.purchase.ID); err != nil {
			return fmt.Errorf("slot not decremented, failed to release claim: %w", err)
		}
		return domain.ErrNoSlotsAvailable
	}
	r.purchase.SlotsDecremented = true
	r.result.SlotsDecremented = true
	return nil
}

func (uc *DefaultPurchaseUsecase) grantAccess(ctx context.Context, r *sagaRun) error {
	issued, err := uc.tokens.Issue(ctx, r.purchase.ID, r.purchase.UserID, uc.tokenTTL)
	if err != nil {
		var fallbackErr error
		issued, fallbackErr = uc.tokens.IssueFallback(ctx, r.purchase.ID, r.purchase.UserID, uc.tokenTTL)
		if fallbackErr != nil {
			return fmt.Errorf("access token not issued: %w", errors.Join(err, fallbackErr))
		}
	}
	expires := issued.ExpiresAt
	r.result.AccessURL = issued.AccessURL
	r.result.TokenID = issued.TokenID
	r.result.AccessExpiresAt = &expires
	return nil
}

// sendCompletionNotifications notifies buyer and seller concurrently.
func (uc *DefaultPurchaseUsecase) sendCompletionNotifications(ctx context.Context, r *sagaRun) error {
	sellerID := r.offer.OwnerID
	if r.tx != nil && r.tx.SellerID != "" {
		sellerID = r.tx.SellerID
	}

	var g errgroup.Group
	g.Go(func() error {
		n := uc.notifier.Create(ctx, notification.CreateInput{
			UserID:             r.purchase.UserID,
			Type:               domain.NotificationPurchaseCompleted,
			Title:              "Purchase completed",
			Content:            fmt.Sprintf("Your slot in %q is ready. Use the access link to get the credentials.", r.offer.Title),
			RelatedEntityType:  domain.EntityPurchase,
			RelatedEntityID:    r.purchase.ID,
			Priority:           domain.PriorityHigh,
			SkipDuplicateCheck: true,
		})
		if n == nil {
			return errors.New("buyer notification was not stored")
		}
		return nil
	})
	g.Go(func() error {
		n := uc.notifier.Create(ctx, notification.CreateInput{
			UserID:            sellerID,
			Type:              domain.NotificationSaleCompleted,
			Title:             "Slot sold",
			Content:           fmt.Sprintf("A buyer purchased a slot in %q.", r.offer.Title),
			RelatedEntityType: domain.EntityPurchase,
			RelatedEntityID:   r.purchase.ID,
			Priority:          domain.PriorityNormal,
		})
		if n == nil {
			return errors.New("seller notification was not stored")
		}
		return nil
	})
	return g.Wait()
}
