package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-slot-service/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPayment_HappyPath(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))

	res, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseCompleted, res.Status)
	assert.False(t, res.Recovered)
	assert.True(t, res.SlotsDecremented)
	assert.NotEmpty(t, res.AccessURL)
	assert.NotEmpty(t, res.TokenID)
	require.NotNil(t, res.AccessExpiresAt)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), *res.AccessExpiresAt)

	p := f.store.Purchase(purchaseID)
	assert.Equal(t, domain.PurchaseCompleted, p.Status)
	assert.True(t, p.AccessProvided)
	assert.True(t, p.SlotsDecremented)
	assert.NotNil(t, p.CompletedAt)
	assert.Equal(t, 0, *f.store.Offer(offerID).SlotsAvailable)

	tokens := f.store.TokensFor(purchaseID)
	require.Len(t, tokens, 1)
	assert.False(t, tokens[0].Used)

	buyer := f.store.NotificationsFor(buyerID)
	seller := f.store.NotificationsFor(sellerID)
	require.Len(t, buyer, 1)
	require.Len(t, seller, 1)
	assert.Equal(t, domain.PriorityHigh, buyer[0].Priority)
	assert.Equal(t, domain.NotificationPurchaseCompleted, buyer[0].Type)
	assert.Equal(t, domain.PriorityNormal, seller[0].Priority)
	assert.Equal(t, domain.NotificationSaleCompleted, seller[0].Type)

	txs := f.store.TransactionsFor(purchaseID)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, domain.TransactionCompleted, tx.Status)
	assert.Equal(t, res.PaymentID, tx.PaymentID)
	assert.Equal(t, sellerID, tx.SellerID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("20")))
	assert.True(t, tx.PlatformFee.Equal(decimal.RequireFromString("2")))
	assert.True(t, tx.SellerAmount.Equal(decimal.RequireFromString("18")))

	assert.Len(t, f.store.Steps[purchaseID], 7)
	assert.Contains(t, f.store.Members, "g1|"+buyerID)
	assert.Equal(t, []logger.StepOutcome{logger.OutcomeCompleted}, f.events.outcomes(domain.StepAccessGranted))
}

func TestProcessPayment_TwiceDecrementsOnce(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(3))
	ctx := context.Background()

	_, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	res, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)

	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable)
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Len(t, f.store.TokensFor(purchaseID), 1)
	assert.Len(t, f.store.TransactionsFor(purchaseID), 1)
	assert.Len(t, f.store.NotificationsFor(buyerID), 1)
}

func TestProcessPayment_ConcurrentCallsDecrementOnce(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(3))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable)
	assert.Equal(t, domain.PurchaseCompleted, f.store.Purchase(purchaseID).Status)
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Len(t, f.store.TransactionsFor(purchaseID), 1)
	assert.Len(t, f.store.TokensFor(purchaseID), 1)
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseCompleted), 1)
	assert.Len(t, f.notificationsOfType(sellerID, domain.NotificationSaleCompleted), 1)
}

func TestProcessPayment_OverlappingRunIsRejected(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(3))
	ctx := context.Background()
	entered, release := f.gateway.hold()

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
		done <- err
	}()
	<-entered

	_, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	assert.ErrorIs(t, err, domain.ErrSagaInProgress)

	txs := f.store.TransactionsFor(purchaseID)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionCharging, txs[0].Status)
	_, err = f.uc.HandlePaymentEvent(ctx, domain.PaymentEvent{TransactionID: txs[0].ID, Status: domain.PaymentStatusCompleted, PaymentID: "ext-1"})
	assert.ErrorIs(t, err, domain.ErrSagaInProgress)

	release()
	require.NoError(t, <-done)

	assert.Equal(t, domain.PurchaseCompleted, f.store.Purchase(purchaseID).Status)
	assert.False(t, f.store.LeaseHeld(purchaseID))
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Len(t, f.store.TokensFor(purchaseID), 1)
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseCompleted), 1)
	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable)
}

func TestProcessPayment_ExpiredLeaseDoesNotChargeAgain(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(3))
	ctx := context.Background()
	entered, release := f.gateway.hold()

	done := make(chan error, 1)
	go func() {
		_, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
		done <- err
	}()
	<-entered
	f.clock.Advance(defaultLeaseTTL + time.Minute)

	res, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	assert.True(t, res.Pending, "the charge in flight settles through its own run or a payment event")
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Empty(t, f.store.TokensFor(purchaseID))

	release()
	require.NoError(t, <-done)

	assert.Equal(t, domain.PurchaseCompleted, f.store.Purchase(purchaseID).Status)
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Len(t, f.store.TokensFor(purchaseID), 1)
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseCompleted), 1)
}

func TestProcessPayment_ValidationErrorsDoNotMutate(t *testing.T) {
	t.Run("foreign purchase", func(t *testing.T) {
		f := newSagaFixture(t, testutil.IntPtr(1))
		_, err := f.uc.ProcessPayment(context.Background(), purchaseID, "intruder")
		assert.ErrorIs(t, err, domain.ErrNotPurchaseOwner)
		assert.Equal(t, domain.PurchasePendingPayment, f.store.Purchase(purchaseID).Status)
	})
	t.Run("inactive offer", func(t *testing.T) {
		f := newSagaFixture(t, testutil.IntPtr(1))
		o := f.store.Offer(offerID)
		o.Status = domain.OfferPaused
		f.store.PutOffer(o)

		_, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
		assert.ErrorIs(t, err, domain.ErrOfferNotActive)
		assert.Equal(t, domain.PurchasePendingPayment, f.store.Purchase(purchaseID).Status)
		assert.Empty(t, f.store.TransactionsFor(purchaseID))
		assert.Zero(t, f.store.NotificationCount())
	})
	t.Run("missing purchase", func(t *testing.T) {
		f := newSagaFixture(t, testutil.IntPtr(1))
		_, err := f.uc.ProcessPayment(context.Background(), "nope", buyerID)
		assert.ErrorIs(t, err, domain.ErrPurchaseNotFound)
	})
	for _, status := range []domain.PurchaseStatus{domain.PurchaseFailed, domain.PurchaseRefunded} {
		t.Run(string(status), func(t *testing.T) {
			f := newSagaFixture(t, testutil.IntPtr(1))
			require.NoError(t, f.store.UpdatePurchaseStatus(context.Background(), purchaseID, status))
			_, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
			assert.ErrorIs(t, err, domain.ErrInvalidPurchaseState)
		})
	}
}

func TestProcessPayment_PaymentFailure(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.gateway.setErr(errors.New("card declined"))

	_, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPaymentFailed)

	assert.Equal(t, domain.PurchaseFailed, f.store.Purchase(purchaseID).Status)
	txs := f.store.TransactionsFor(purchaseID)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionFailed, txs[0].Status)
	assert.Equal(t, 1, *f.store.Offer(offerID).SlotsAvailable)
	assert.Empty(t, f.store.TokensFor(purchaseID))

	failed := f.notificationsOfType(buyerID, domain.NotificationPurchaseFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, domain.PriorityHigh, failed[0].Priority)
	assert.Empty(t, f.store.NotificationsFor(sellerID))
	assert.Equal(t, []logger.StepOutcome{logger.OutcomeFailed}, f.events.outcomes(domain.StepPaymentProcessed))
}

func TestProcessPayment_TransactionCreateFailure(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.store.FailTransactionCreate = true

	_, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, domain.PurchaseFailed, f.store.Purchase(purchaseID).Status)
	assert.Zero(t, f.gateway.callCount())
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseFailed), 1)
}

func TestProcessPayment_PurchaseUpdateFailure(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.store.FailMarkCompleted = true

	_, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.Error(t, err)
	assert.Equal(t, domain.PurchaseFailed, f.store.Purchase(purchaseID).Status)
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseFailed), 1)
}

func TestProcessPayment_NoSlotsStillCompletes(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(0))

	res, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseCompleted, res.Status)
	assert.False(t, res.Recovered)
	assert.False(t, res.SlotsDecremented)
	assert.False(t, f.store.Purchase(purchaseID).SlotsDecremented)
	assert.Equal(t, 0, *f.store.Offer(offerID).SlotsAvailable)
	assert.Equal(t, 1, f.unusedTokens())
	assert.Equal(t, []logger.StepOutcome{logger.OutcomeSoftFailed}, f.events.outcomes(domain.StepSlotsResolved))
}

func TestProcessPayment_GroupFailureIsSoft(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.store.FailGroupAdd = true

	res, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.NoError(t, err)
	assert.False(t, res.Recovered)
	assert.Equal(t, []logger.StepOutcome{logger.OutcomeSoftFailed}, f.events.outcomes(domain.StepGroupMembership))
}

func TestProcessPayment_TokenFallback(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.store.FailTokenCreate = true

	res, err := f.uc.ProcessPayment(context.Background(), purchaseID, buyerID)
	require.NoError(t, err)
	assert.False(t, res.Recovered)
	assert.NotEmpty(t, res.AccessURL)
	assert.Equal(t, 1, f.unusedTokens())
}

func TestProcessPayment_AccessFailureRecovers(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(2))
	f.store.FailTokenCreate = true
	f.store.FailRawTokenInsert = true
	ctx := context.Background()

	res, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err, "a charged buyer never sees a failure")
	assert.True(t, res.Recovered)
	assert.Equal(t, domain.PurchaseCompleted, res.Status)
	assert.Empty(t, res.AccessURL)
	assert.Equal(t, domain.PurchaseCompleted, f.store.Purchase(purchaseID).Status)
	assert.NotContains(t, f.store.Steps[purchaseID], domain.StepAccessGranted)
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseCompleted), 1)

	f.store.FailTokenCreate = false
	f.store.FailRawTokenInsert = false
	res, err = f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	assert.True(t, res.Recovered)
	assert.NotEmpty(t, res.AccessURL)
	assert.Equal(t, 1, f.unusedTokens())
	assert.Equal(t, 1, *f.store.Offer(offerID).SlotsAvailable)
	assert.Equal(t, 1, f.gateway.callCount())
	assert.Len(t, f.notificationsOfType(buyerID, domain.NotificationPurchaseCompleted), 1)
}

func TestProcessPayment_ResumesLegacyCompletedPurchase(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(2))
	ctx := context.Background()
	p := f.store.Purchase(purchaseID)
	p.Status = domain.PurchaseCompleted
	p.AccessProvided = true
	p.SlotsDecremented = true
	f.store.PutPurchase(p)
	f.store.PutTransaction(domain.Transaction{
		ID: "t-legacy", PurchaseID: purchaseID, BuyerID: buyerID, SellerID: sellerID,
		Status: domain.TransactionCompleted, PaymentID: "pay-legacy",
	})

	res, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	assert.True(t, res.Recovered)
	assert.Equal(t, "t-legacy", res.TransactionID)
	assert.NotEmpty(t, res.AccessURL)
	assert.Zero(t, f.gateway.callCount())
	assert.Equal(t, 2, *f.store.Offer(offerID).SlotsAvailable, "already decremented")
}

func TestProcessPayment_PendingThenWebhook(t *testing.T) {
	f := newSagaFixture(t, testutil.IntPtr(1))
	f.gateway.setErr(domain.ErrPaymentPending)
	ctx := context.Background()

	res, err := f.uc.ProcessPayment(ctx, purchaseID, buyerID)
	require.NoError(t, err)
	assert.True(t, res.Pending)
	assert.Equal(t, domain.PurchasePaymentProcessing, f.store.Purchase(purchaseID).Status)
	assert.Empty(t, f.store.TokensFor(purchaseID))

	event := domain.PaymentEvent{TransactionID: res.TransactionID, Status: domain.PaymentStatusCompleted, PaymentID: "ext-1"}
	res, err = f.uc.HandlePaymentEvent(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseCompleted, res.Status)
	assert.False(t, res.Recovered)
	assert.NotEmpty(t, res.AccessURL)
	assert.Equal(t, "ext-1", f.store.TransactionsFor(purchaseID)[0].PaymentID)
	assert.Equal(t, 0, *f.store.Offer(offerID).SlotsAvailable)
	assert.Len(t, f.store.NotificationsFor(buyerID), 1)

	res, err = f.uc.HandlePaymentEvent(ctx, event)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Len(t, f.store.TokensFor(purchaseID), 1)
	assert.Equal(t, 1, f.gateway.callCount())
}
