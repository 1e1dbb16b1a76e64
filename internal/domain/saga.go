package domain

import (
	"context"
	"time"
)

type SagaStep string

const (
	StepTransactionCreated SagaStep = "transaction_created"
	StepPaymentProcessed   SagaStep = "payment_processed"
	StepPurchaseUpdated    SagaStep = "purchase_updated"
	StepGroupMembership    SagaStep = "group_membership"
	StepSlotsResolved      SagaStep = "slots_resolved"
	StepAccessGranted      SagaStep = "access_granted"
	StepNotificationsSent  SagaStep = "notifications_sent"
)

// StepPolicy decides what a failed step does to the rest of the saga.
type StepPolicy int

const (
	// PolicyCritical failures fail the purchase before payment and turn into
	// recovery after it.
	PolicyCritical StepPolicy = iota
	// PolicyBestEffort failures are logged and the step counts as done.
	PolicyBestEffort
)

func (p StepPolicy) String() string {
	if p == PolicyBestEffort {
		return "best_effort"
	}
	return "critical"
}

type SagaStepRepository interface {
	GetCompletedSteps(ctx context.Context, purchaseID string) (map[SagaStep]time.Time, error)
	// MarkStepCompleted is idempotent per (purchase, step).
	MarkStepCompleted(ctx context.Context, purchaseID string, step SagaStep, at time.Time) error
}
