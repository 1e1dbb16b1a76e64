package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/cenkalti/backoff/v5"
	"github.com/segmentio/kafka-go"
)

var _ domain.SubscriberPort = (*DefaultKafkaSubscriber)(nil)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type DefaultKafkaSubscriber struct {
	newReader     func(topic, groupID string) messageReader
	retryInterval time.Duration
	maxInterval   time.Duration
}

func NewDefaultKafkaSubscriber(cfg config.KafkaService) (*DefaultKafkaSubscriber, error) {
	dialer, err := NewDialer(cfg)
	if err != nil {
		return nil, err
	}
	brokers := Brokers(cfg)
	return &DefaultKafkaSubscriber{
		newReader: func(topic, groupID string) messageReader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers: brokers,
				Topic:   topic,
				GroupID: groupID,
				Dialer:  dialer,
			})
		},
		retryInterval: 500 * time.Millisecond,
		maxInterval:   30 * time.Second,
	}, nil
}

// Consume hands every message of topic to handle, one at a time, and commits
// its offset after handle succeeded. A failing message is retried with
// backoff and blocks the partition until it goes through or ctx is done, so
// an unapplied message is fetched again after a restart.
func (k *DefaultKafkaSubscriber) Consume(ctx context.Context, topic, groupID string, handle domain.MessageHandler) error {
	reader := k.newReader(topic, groupID)
	defer reader.Close()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to fetch from %s: %w", topic, err)
		}

		msg := domain.Message{Key: m.Key, Value: m.Value}
		if err := k.handleWithRetry(ctx, topic, msg, handle); err != nil {
			slog.Warn("kafka consumer stopped before message was applied",
				"topic", topic, "partition", m.Partition, "offset", m.Offset, "error", err)
			return nil
		}
		if err := reader.CommitMessages(ctx, m); err != nil {
			slog.Error("kafka commit failed", "topic", topic, "offset", m.Offset, "error", err)
		}
	}
}

func (k *DefaultKafkaSubscriber) handleWithRetry(ctx context.Context, topic string, msg domain.Message, handle domain.MessageHandler) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = k.retryInterval
	b.MaxInterval = k.maxInterval
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, handle(ctx, msg)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("kafka message not applied, retrying",
				"topic", topic, "key", string(msg.Key), "retry_in", next, "error", err)
		}),
	)
	return err
}
