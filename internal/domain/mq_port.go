package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
}

type PublisherPort interface {
	Publish(ctx context.Context, topic string, msgs ...Message) error
}

// MessageHandler processes one consumed message. A non-nil error means the
// message was not applied and must be handed over again.
type MessageHandler func(ctx context.Context, msg Message) error

type SubscriberPort interface {
	// Consume blocks until ctx is done. The offset of a message is committed
	// only after handle returned nil for it.
	Consume(ctx context.Context, topic, groupID string, handle MessageHandler) error
}
