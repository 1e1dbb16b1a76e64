package purchase

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/testutil"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedFixture(t *testing.T) (*sagaFixture, *purchasedto.SagaResult) {
	t.Helper()
	f := newSagaFixture(t, testutil.IntPtr(2))
	res, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.NoError(t, err)
	return f, res
}

func TestConfirmAccess_Working(t *testing.T) {
	f, _ := completedFixture(t)
	ctx := context.Background()
	in := &purchasedto.ConfirmAccessInput{PurchaseID: purchaseID, UserID: buyerID, IsWorking: true}

	out, err := f.uc.ConfirmAccess(ctx, in)
	require.NoError(t, err)
	assert.Nil(t, out.Dispute)
	assert.True(t, out.Purchase.AccessConfirmed)

	p := f.store.Purchase(purchaseID)
	assert.True(t, p.AccessConfirmed)
	require.NotNil(t, p.AccessConfirmedAt)
	assert.Equal(t, f.clock.Now(), *p.AccessConfirmedAt)
	assert.Zero(t, f.store.DisputeCount())

	_, err = f.uc.ConfirmAccess(ctx, in)
	assert.ErrorIs(t, err, domain.ErrAccessAlreadyConfirmed)
}

func TestConfirmAccess_NotWorkingOpensDispute(t *testing.T) {
	f, res := completedFixture(t)
	before := f.store.NotificationCount()

	out, err := f.uc.ConfirmAccess(context.Background(), &purchasedto.ConfirmAccessInput{
		PurchaseID: purchaseID, UserID: buyerID, IsWorking: false, Description: "password rejected",
	})
	require.NoError(t, err)
	require.NotNil(t, out.Dispute)
	assert.Equal(t, res.TransactionID, out.Dispute.TransactionID)
	assert.Equal(t, "password rejected", out.Dispute.Description)
	assert.Equal(t, 1, f.store.DisputeCount())
	assert.Equal(t, before+2, f.store.NotificationCount())
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationDisputeCreated), 1)
	assert.Len(t, f.notificationsOfType(sellerID, domain.NotificationDisputeReported), 1)
	assert.True(t, f.store.Purchase(purchaseID).AccessConfirmed)
}

func TestConfirmAccess_DisputeFailureResetsConfirmation(t *testing.T) {
	f, _ := completedFixture(t)
	f.store.FailDisputeCreate = true

	_, err := f.uc.ConfirmAccess(context.Background(), &purchasedto.ConfirmAccessInput{PurchaseID: purchaseID, UserID: buyerID})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.False(t, f.store.Purchase(purchaseID).AccessConfirmed)
}

func TestConfirmAccess_Preconditions(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	ctx := context.Background()

	_, err := f.uc.ConfirmAccess(ctx, &purchasedto.ConfirmAccessInput{PurchaseID: purchaseID, UserID: buyerID, IsWorking: true})
	assert.ErrorIs(t, err, domain.ErrAccessNotProvided)

	_, err = f.uc.ConfirmAccess(ctx, &purchasedto.ConfirmAccessInput{PurchaseID: purchaseID, UserID: sellerID, IsWorking: true})
	assert.ErrorIs(t, err, domain.ErrNotPurchaseOwner)
}

func TestConfirmAccess_RefundedPurchaseCannotDispute(t *testing.T) {
	f, _ := completedFixture(t)
	ctx := context.Background()
	_, err := f.uc.Refund(ctx, purchaseID)
	require.NoError(t, err)
	require.True(t, f.store.Purchase(purchaseID).AccessProvided)

	_, err = f.uc.ConfirmAccess(ctx, &purchasedto.ConfirmAccessInput{PurchaseID: purchaseID, UserID: buyerID, IsWorking: false})
	assert.ErrorIs(t, err, domain.ErrInvalidPurchaseState)
	assert.Zero(t, f.store.DisputeCount())
	assert.False(t, f.store.Purchase(purchaseID).AccessConfirmed)
}

func TestReissueAccess(t *testing.T) {
	f, res := completedFixture(t)
	ctx := context.Background()

	out, err := f.uc.ReissueAccess(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	assert.NotEqual(t, res.AccessURL, out.AccessURL)
	assert.Equal(t, 1, f.unusedTokens())
	assert.Len(t, f.store.TokensFor(purchaseID), 2)

	_, err = f.uc.ReissueAccess(ctx, purchaseID, sellerID)
	assert.ErrorIs(t, err, domain.ErrNotPurchaseOwner)
}

func TestReissueAccess_RequiresCompletedPurchase(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	_, err := f.uc.ReissueAccess(context.Background(), purchaseID, buyerID)
	assert.ErrorIs(t, err, domain.ErrInvalidPurchaseState)
}

func TestRefund(t *testing.T) {
	f, _ := completedFixture(t)
	ctx := context.Background()
	require.Equal(t, 1, *f.store.Offer(offerID).SlotsAvailable)

	res, err := f.uc.Refund(ctx, purchaseID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseRefunded, res.Status)

	p := f.store.Purchase(purchaseID)
	assert.Equal(t, domain.PurchaseRefunded, p.Status)
	assert.False(t, p.SlotsDecremented)
	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable)
	assert.Zero(t, f.unusedTokens())
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseRefunded), 1)

	_, err = f.uc.Refund(ctx, purchaseID)
	assert.ErrorIs(t, err, domain.ErrInvalidPurchaseState)
	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable)
}

func TestRefund_UnknownPurchase(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	_, err := f.uc.Refund(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
}

func TestRefund_WithoutDecrementDoesNotRestore(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(0))
	ctx := context.Background()
	_, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)

	_, err = f.uc.Refund(ctx, purchaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, *f.store.Offer(offerID).SlotsAvailable)
}
