package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

var testTopics = Topics{Notification: "notification-events", Purchase: "purchase-events", Dispute: "dispute-events"}

func TestPublishNotification_KeyedByUser(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(w, testTopics)

	err := p.PublishNotification(context.Background(), NotificationEvent{NotificationID: "n1", UserID: "u1", Title: "hi"})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "notification-events", msg.Topic)
	assert.Equal(t, []byte("u1"), msg.Key)

	var decoded NotificationEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "n1", decoded.NotificationID)
}

func TestPublishPurchase_EncodesDecimalAsString(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(w, testTopics)

	err := p.PublishPurchase(context.Background(), PurchaseEvent{PurchaseID: "p1", Amount: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "purchase-events", w.msgs[0].Topic)
	assert.Contains(t, string(w.msgs[0].Value), `"amount":"12.5"`)
}

func TestPublish_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newPublisherWithWriter(&fakeWriter{err: boom}, testTopics)

	err := p.PublishDispute(context.Background(), DisputeEvent{DisputeID: "d1", PurchaseID: "p1"})
	assert.ErrorIs(t, err, boom)
}

func TestPublish_NoMessages(t *testing.T) {
	w := &fakeWriter{err: errors.New("must not be called")}
	p := newPublisherWithWriter(w, testTopics)
	assert.NoError(t, p.Publish(context.Background(), "any"))
}

func TestMechanism(t *testing.T) {
	m, err := Mechanism(config.KafkaService{})
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = Mechanism(config.KafkaService{Mechanism: "PLAIN", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "PLAIN", m.Name())

	m, err = Mechanism(config.KafkaService{Mechanism: "scram-sha-512", Username: "u", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "SCRAM-SHA-512", m.Name())

	_, err = Mechanism(config.KafkaService{Mechanism: "gssapi"})
	assert.Error(t, err)
}

func TestBrokers(t *testing.T) {
	assert.Equal(t, []string{"kafka:9092"}, Brokers(config.KafkaService{Host: "kafka", Port: "9092"}))
}
