package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type StepOutcome string

const (
	OutcomeCompleted  StepOutcome = "completed"
	OutcomeSkipped    StepOutcome = "skipped"
	OutcomeSoftFailed StepOutcome = "soft_failed"
	OutcomeFailed     StepOutcome = "failed"
)

// SagaStepEvent is one audit row per executed saga step.
type SagaStepEvent struct {
	ID         uint `gorm:"primaryKey"`
	PurchaseID string
	Step       string
	Outcome    StepOutcome
	Error      string
	Timestamp  time.Time
}

func (SagaStepEvent) TableName() string {
	return "saga_step_events"
}

type SagaEventLogger interface {
	LogStep(ctx context.Context, event SagaStepEvent) error
}

type PGSagaEventLogger struct {
	db *gorm.DB
}

func NewPGSagaEventLogger(db *gorm.DB) *PGSagaEventLogger {
	return &PGSagaEventLogger{db: db}
}

func (l *PGSagaEventLogger) LogStep(ctx context.Context, event SagaStepEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}
