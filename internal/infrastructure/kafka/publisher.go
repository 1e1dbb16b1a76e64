package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Topics struct {
	Notification string
	Purchase     string
	Dispute      string
}

func TopicsFromConfig(cfg config.KafkaService) Topics {
	return Topics{
		Notification: cfg.NotificationTopic,
		Purchase:     cfg.PurchaseTopic,
		Dispute:      cfg.DisputeTopic,
	}
}

var _ domain.PublisherPort = (*DefaultKafkaPublisher)(nil)

type DefaultKafkaPublisher struct {
	writer messageWriter
	topics Topics
}

func NewDefaultKafkaPublisher(cfg config.KafkaService) (*DefaultKafkaPublisher, error) {
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &DefaultKafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(Brokers(cfg)...),
			Balancer:               &kafka.LeastBytes{},
			Transport:              transport,
			AllowAutoTopicCreation: true,
		},
		topics: TopicsFromConfig(cfg),
	}, nil
}

func newPublisherWithWriter(w messageWriter, topics Topics) *DefaultKafkaPublisher {
	return &DefaultKafkaPublisher{writer: w, topics: topics}
}

func (k *DefaultKafkaPublisher) Publish(ctx context.Context, topic string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
			Topic: topic,
		})
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, km...); err != nil {
		return fmt.Errorf("failed to write messages to %s: %w", topic, err)
	}
	return nil
}

func (k *DefaultKafkaPublisher) publishJSON(ctx context.Context, topic, key string, event any) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return k.Publish(ctx, topic, domain.Message{Key: []byte(key), Value: v})
}

// Keyed by recipient so one user's notifications stay ordered.
func (k *DefaultKafkaPublisher) PublishNotification(ctx context.Context, event NotificationEvent) error {
	return k.publishJSON(ctx, k.topics.Notification, event.UserID, event)
}

func (k *DefaultKafkaPublisher) PublishPurchase(ctx context.Context, event PurchaseEvent) error {
	return k.publishJSON(ctx, k.topics.Purchase, event.PurchaseID, event)
}

func (k *DefaultKafkaPublisher) PublishDispute(ctx context.Context, event DisputeEvent) error {
	return k.publishJSON(ctx, k.topics.Dispute, event.PurchaseID, event)
}

func (k *DefaultKafkaPublisher) Close() error {
	return k.writer.Close()
}
