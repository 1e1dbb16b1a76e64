package purchase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	disputedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/dispute"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
)

const defaultDisputeDescription = "Buyer reported that the purchased access does not work"

// ConfirmAccess records the buyer's verdict on the access they received. A
// negative verdict opens a dispute.
func (uc *DefaultPurchaseUsecase) ConfirmAccess(ctx context.Context, input *purchasedto.ConfirmAccessInput) (*purchasedto.ConfirmAccessOutput, error) {
	purchase, err := uc.purchases.GetPurchaseByID(ctx, input.PurchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != input.UserID {
		return nil, domain.ErrNotPurchaseOwner
	}
	if !purchase.AccessProvided {
		return nil, domain.ErrAccessNotProvided
	}
	// access_provided survives a refund.
	if purchase.Status != domain.PurchaseCompleted {
		return nil, fmt.Errorf("%w: purchase is %s", domain.ErrInvalidPurchaseState, purchase.Status)
	}
	if purchase.AccessConfirmed {
		return nil, domain.ErrAccessAlreadyConfirmed
	}

	var tx *domain.Transaction
	if !input.IsWorking {
		tx, err = uc.transactions.GetLatestTransactionByPurchaseID(ctx, purchase.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction for dispute: %w", err)
		}
	}

	now := uc.clock.Now()
	confirmed, err := uc.purchases.MarkAccessConfirmed(ctx, purchase.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm access: %w", err)
	}
	if !confirmed {
		return nil, domain.ErrAccessAlreadyConfirmed
	}
	purchase.AccessConfirmed = true
	purchase.AccessConfirmedAt = &now

	out := &purchasedto.ConfirmAccessOutput{Purchase: purchase}
	if input.IsWorking {
		slog.Info("access confirmed", "purchase_id", purchase.ID)
		return out, nil
	}

	description := input.Description
	if description == "" {
		description = defaultDisputeDescription
	}
	dispute, err := uc.disputes.Open(ctx, &disputedto.OpenDisputeInput{
		Purchase:    purchase,
		Transaction: tx,
		ReporterID:  input.UserID,
		Description: description,
	})
	if err != nil {
		if resetErr := uc.purchases.ResetAccessConfirmation(ctx, purchase.ID); resetErr != nil {
			slog.Error("failed to reset access confirmation", "purchase_id", purchase.ID, "error", resetErr)
		}
		return nil, err
	}
	out.Dispute = dispute
	return out, nil
}

// ReissueAccess replaces the unused tokens of a completed purchase with a
// fresh one.
func (uc *DefaultPurchaseUsecase) ReissueAccess(ctx context.Context, purchaseID, userID string) (*purchasedto.AccessOutput, error) {
	purchase, err := uc.purchases.GetPurchaseByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.UserID != userID {
		return nil, domain.ErrNotPurchaseOwner
	}
	if purchase.Status != domain.PurchaseCompleted {
		return nil, fmt.Errorf("%w: purchase is %s", domain.ErrInvalidPurchaseState, purchase.Status)
	}

	issued, err := uc.tokens.Reissue(ctx, purchase.ID, purchase.UserID)
	if err != nil {
		return nil, err
	}
	slog.Info("access token reissued", "purchase_id", purchase.ID, "token_id", issued.TokenID)
	return &purchasedto.AccessOutput{
		PurchaseID: purchase.ID,
		TokenID:    issued.TokenID,
		AccessURL:  issued.AccessURL,
		ExpiresAt:  issued.ExpiresAt,
	}, nil
}
