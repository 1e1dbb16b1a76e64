package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/google/uuid"
)

type step struct {
	name   domain.SagaStep
	policy domain.StepPolicy
	run    func(ctx context.Context, r *sagaRun) error
}

// sagaRun is the state shared by the steps of one saga execution.
type sagaRun struct {
	purchase  *domain.Purchase
	offer     *domain.Offer
	tx        *domain.Transaction
	completed map[domain.SagaStep]time.Time
	result    *purchasedto.SagaResult
}

func (r *sagaRun) done(s domain.SagaStep) bool {
	_, ok := r.completed[s]
	return ok
}

// paid reports whether the purchase_updated step is behind us. From that point
// on the buyer has been charged and critical failures turn into recovery.
func (r *sagaRun) paid() bool {
	return r.done(domain.StepPurchaseUpdated)
}

// stepError is returned by execute when a critical step fails.
type stepError struct {
	step domain.SagaStep
	err  error
}

func (e *stepError) Error() string {
	return fmt.Sprintf("saga step %s failed: %v", e.step, e.err)
}

func (e *stepError) Unwrap() error { return e.err }

// acquireLease makes the caller the only run of the purchase saga until the
// returned release is called or the lease expires.
func (uc *DefaultPurchaseUsecase) acquireLease(ctx context.Context, purchaseID string) (release func(), err error) {
	owner := uuid.New().String()
	now := uc.clock.Now()
	ok, err := uc.purchases.AcquireSagaLease(ctx, purchaseID, owner, now, now.Add(uc.leaseTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire saga lease: %w", err)
	}
	if !ok {
		return nil, domain.ErrSagaInProgress
	}
	return func() {
		if err := uc.purchases.ReleaseSagaLease(context.WithoutCancel(ctx), purchaseID, owner); err != nil {
			slog.Error("failed to release saga lease", "purchase_id", purchaseID, "error", err)
		}
	}, nil
}

func (uc *DefaultPurchaseUsecase) pipeline() []step {
	return []step{
		{domain.StepTransactionCreated, domain.PolicyCritical, uc.createTransaction},
		{domain.StepPaymentProcessed, domain.PolicyCritical, uc.processCharge},
		{domain.StepPurchaseUpdated, domain.PolicyCritical, uc.completePurchase},
		{domain.StepGroupMembership, domain.PolicyBestEffort, uc.joinGroup},
		{domain.StepSlotsResolved, domain.PolicyBestEffort, uc.resolveSlots},
		{domain.StepAccessGranted, domain.PolicyCritical, uc.grantAccess},
		{domain.StepNotificationsSent, domain.PolicyBestEffort, uc.sendCompletionNotifications},
	}
}

func (uc *DefaultPurchaseUsecase) newRun(ctx context.Context, purchase *domain.Purchase, offer *domain.Offer) (*sagaRun, error) {
	completed, err := uc.steps.GetCompletedSteps(ctx, purchase.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load saga steps: %w", err)
	}
	// Purchases completed before steps were recorded still count as paid.
	if purchase.Status == domain.PurchaseCompleted {
		for _, s := range []domain.SagaStep{domain.StepTransactionCreated, domain.StepPaymentProcessed, domain.StepPurchaseUpdated} {
			if _, ok := completed[s]; !ok {
				completed[s] = uc.clock.Now()
			}
		}
	}
	return &sagaRun{
		purchase:  purchase,
		offer:     offer,
		completed: completed,
		result: &purchasedto.SagaResult{
			PurchaseID:       purchase.ID,
			Status:           purchase.Status,
			SlotsDecremented: purchase.SlotsDecremented,
		},
	}, nil
}

// execute runs every step that is not recorded as completed yet. Best effort
// failures are logged and the step counts as done. The first critical failure
// stops the run and is returned as *stepError.
func (uc *DefaultPurchaseUsecase) execute(ctx context.Context, r *sagaRun) error {
	for _, s := range uc.pipeline() {
		if r.done(s.name) {
			uc.logStep(ctx, r, s.name, logger.OutcomeSkipped, nil)
			continue
		}

		err := s.run(ctx, r)
		switch {
		case err == nil:
			uc.logStep(ctx, r, s.name, logger.OutcomeCompleted, nil)
		case errors.Is(err, domain.ErrPaymentPending):
			uc.logStep(ctx, r, s.name, logger.OutcomeSkipped, err)
			return err
		case s.policy == domain.PolicyBestEffort:
			slog.Warn("saga step failed, continuing",
				"purchase_id", r.purchase.ID, "step", s.name, "policy", s.policy.String(), "error", err)
			uc.metrics.RecordStepFailure(string(s.name), s.policy.String())
			uc.logStep(ctx, r, s.name, logger.OutcomeSoftFailed, err)
		default:
			slog.Error("saga step failed",
				"purchase_id", r.purchase.ID, "step", s.name, "policy", s.policy.String(), "error", err)
			uc.metrics.RecordStepFailure(string(s.name), s.policy.String())
			uc.logStep(ctx, r, s.name, logger.OutcomeFailed, err)
			return &stepError{step: s.name, err: err}
		}
		uc.markDone(ctx, r, s.name)
	}
	return nil
}

func (uc *DefaultPurchaseUsecase) markDone(ctx context.Context, r *sagaRun, s domain.SagaStep) {
	at := uc.clock.Now()
	r.completed[s] = at
	if err := uc.steps.MarkStepCompleted(ctx, r.purchase.ID, s, at); err != nil {
		// The step itself is idempotent, a lost marker only costs a re-run.
		slog.Error("failed to record saga step", "purchase_id", r.purchase.ID, "step", s, "error", err)
	}
}

func (uc *DefaultPurchaseUsecase) logStep(ctx context.Context, r *sagaRun, s domain.SagaStep, outcome logger.StepOutcome, err error) {
	if uc.eventLogger == nil {
		return
	}
	event := logger.SagaStepEvent{
		PurchaseID: r.purchase.ID,
		Step:       string(s),
		Outcome:    outcome,
		Timestamp:  uc.clock.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	if logErr := uc.eventLogger.LogStep(ctx, event); logErr != nil {
		slog.Error("failed to write saga audit event", "purchase_id", r.purchase.ID, "step", s, "error", logErr)
	}
}

// finish turns the outcome of execute into the caller-visible result.
func (uc *DefaultPurchaseUsecase) finish(ctx context.Context, r *sagaRun, runErr error, entry string, started time.Time) (*purchasedto.SagaResult, error) {
	defer func() {
		uc.metrics.ObserveSaga(entry, time.Since(started).Seconds())
	}()

	if runErr == nil {
		return uc.succeed(ctx, r), nil
	}
	if errors.Is(runErr, domain.ErrPaymentPending) {
		r.result.Pending = true
		r.result.Status = domain.PurchasePaymentProcessing
		uc.metrics.RecordPurchase("pending")
		slog.Info("payment pending, waiting for provider", "purchase_id", r.purchase.ID, "transaction_id", r.result.TransactionID)
		return r.result, nil
	}
	if !r.paid() {
		return nil, uc.fail(ctx, r, runErr)
	}

	uc.recover(ctx, r)
	return uc.succeed(ctx, r), nil
}

// recover retries the missing post-payment steps once, all best effort.
func (uc *DefaultPurchaseUsecase) recover(ctx context.Context, r *sagaRun) {
	r.result.Recovered = true
	for _, s := range uc.pipeline() {
		if r.done(s.name) {
			continue
		}
		if err := s.run(ctx, r); err != nil {
			slog.Error("saga recovery step failed",
				"purchase_id", r.purchase.ID, "step", s.name, "error", err)
			uc.logStep(ctx, r, s.name, logger.OutcomeSoftFailed, err)
			continue
		}
		uc.logStep(ctx, r, s.name, logger.OutcomeCompleted, nil)
		uc.markDone(ctx, r, s.name)
	}
}

func (uc *DefaultPurchaseUsecase) succeed(ctx context.Context, r *sagaRun) *purchasedto.SagaResult {
	r.result.Status = domain.PurchaseCompleted
	outcome := "completed"
	if r.result.Recovered {
		outcome = "recovered"
	}
	uc.metrics.RecordPurchase(outcome)
	slog.Info("purchase fulfilled",
		"purchase_id", r.purchase.ID, "transaction_id", r.result.TransactionID, "recovered", r.result.Recovered)
	uc.publish(ctx, r, domain.PurchaseCompleted)
	return r.result
}

// fail is the terminal path for critical failures before the purchase was
// marked completed.
func (uc *DefaultPurchaseUsecase) fail(ctx context.Context, r *sagaRun, cause error) error {
	if r.tx != nil {
		if err := uc.transactions.FailTransaction(ctx, r.tx.ID); err != nil {
			slog.Error("failed to mark transaction failed", "transaction_id", r.tx.ID, "error", err)
		}
	}
	if err := uc.purchases.UpdatePurchaseStatus(ctx, r.purchase.ID, domain.PurchaseFailed); err != nil {
		slog.Error("failed to mark purchase failed", "purchase_id", r.purchase.ID, "error", err)
	}
	uc.notifyFailure(ctx, r.purchase)
	uc.metrics.RecordPurchase("failed")
	uc.publish(ctx, r, domain.PurchaseFailed)
	return fmt.Errorf("purchase %s failed: %w", r.purchase.ID, cause)
}

func (uc *DefaultPurchaseUsecase) notifyFailure(ctx context.Context, purchase *domain.Purchase) {
	uc.notifier.Create(ctx, notification.CreateInput{
		UserID:            purchase.UserID,
		Type:              domain.NotificationPurchaseFailed,
		Title:             "Purchase failed",
		Content:           "We could not complete your purchase. You have not been granted access and no slot was reserved.",
		RelatedEntityType: domain.EntityPurchase,
		RelatedEntityID:   purchase.ID,
		Priority:          domain.PriorityHigh,
	})
}

func (uc *DefaultPurchaseUsecase) publish(ctx context.Context, r *sagaRun, status domain.PurchaseStatus) {
	if uc.publisher == nil {
		return
	}
	event := publisher.PurchaseEvent{
		PurchaseID: r.purchase.ID,
		OfferID:    r.purchase.OfferID,
		BuyerID:    r.purchase.UserID,
		Status:     string(status),
		Recovered:  r.result.Recovered,
		OccurredAt: uc.clock.Now(),
	}
	if r.tx != nil {
		event.TransactionID = r.tx.ID
		event.SellerID = r.tx.SellerID
		event.Amount = r.tx.Amount
		event.PlatformFee = r.tx.PlatformFee
	}
	go func(ctx context.Context) {
		if err := uc.publisher.PublishPurchase(ctx, event); err != nil {
			slog.Error("failed to publish kafka purchase event", "purchase_id", event.PurchaseID, "status", event.Status, "error", err)
		}
	}(context.WithoutCancel(ctx))
}
