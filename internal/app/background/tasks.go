package background

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
)

type TokenPurger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type PaymentEventHandler interface {
	HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) (*purchasedto.SagaResult, error)
}

type HealthWatcher interface {
	Watch(ctx context.Context, interval time.Duration)
}

type BackgroundTasks struct {
	Tokens     TokenPurger
	Payments   PaymentEventHandler
	Subscriber domain.SubscriberPort
	Health     HealthWatcher
	Access     config.AccessConfig
	Kafka      config.KafkaService
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startTokenPurge(ctx)
	if bt.Subscriber != nil {
		go bt.startPaymentEventConsumer(ctx)
	}
	if bt.Health != nil {
		go bt.Health.Watch(ctx, 15*time.Second)
	}
}

func (bt *BackgroundTasks) startTokenPurge(ctx context.Context) {
	interval := bt.Access.PurgeInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.purgeTokens(ctx)
		}
	}
}

func (bt *BackgroundTasks) purgeTokens(ctx context.Context) {
	n, err := bt.Tokens.PurgeExpired(ctx, bt.Access.PurgeRetention)
	if err != nil {
		slog.Error("access token purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired access tokens purged", "count", n)
	}
}

func (bt *BackgroundTasks) startPaymentEventConsumer(ctx context.Context) {
	err := bt.Subscriber.Consume(ctx, bt.Kafka.PaymentTopic, bt.Kafka.PaymentGroupID, bt.handlePaymentMessage)
	if err != nil {
		slog.Error("payment event consumer stopped", "topic", bt.Kafka.PaymentTopic, "error", err)
	}
}

// handlePaymentMessage returns an error only when the event should be
// delivered again. Malformed events and events that can never apply are
// logged and dropped so the partition keeps moving.
func (bt *BackgroundTasks) handlePaymentMessage(ctx context.Context, msg domain.Message) error {
	var event domain.PaymentEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		slog.Error("malformed payment event", "key", string(msg.Key), "error", err)
		return nil
	}
	result, err := bt.Payments.HandlePaymentEvent(ctx, event)
	switch {
	case err == nil:
		slog.Info("payment event applied",
			"transaction_id", event.TransactionID, "purchase_id", result.PurchaseID, "purchase_status", result.Status)
		return nil
	case errors.Is(err, domain.ErrInvalidPaymentEvent),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrInvalidPurchaseState):
		slog.Warn("payment event dropped",
			"transaction_id", event.TransactionID, "status", event.Status, "error", err)
		return nil
	default:
		return fmt.Errorf("payment event for transaction %s: %w", event.TransactionID, err)
	}
}
