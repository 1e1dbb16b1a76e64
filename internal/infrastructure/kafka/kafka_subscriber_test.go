package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu      sync.Mutex
	msgs    []kafka.Message
	commits []int64
	closed  bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.commits = append(r.commits, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.commits...)
}

func newTestSubscriber(r *fakeReader) *DefaultKafkaSubscriber {
	return &DefaultKafkaSubscriber{
		newReader:     func(string, string) messageReader { return r },
		retryInterval: time.Millisecond,
		maxInterval:   5 * time.Millisecond,
	}
}

func TestConsume_CommitsOnlyAfterHandlerReturns(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Offset: 7, Key: []byte("tx-1"), Value: []byte(`{}`)}}}
	sub := newTestSubscriber(r)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- sub.Consume(ctx, "payment-events", "slot-service", func(_ context.Context, msg domain.Message) error {
			assert.Equal(t, []byte("tx-1"), msg.Key)
			close(started)
			<-finish
			return nil
		})
	}()

	<-started
	assert.Empty(t, r.committed(), "offset moved while the message was being applied")
	close(finish)

	assert.Eventually(t, func() bool { return len(r.committed()) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int64{7}, r.committed())
	assert.True(t, r.closed)
}

func TestConsume_RetriesFailedMessageBeforeCommit(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Offset: 1}, {Offset: 2}}}
	sub := newTestSubscriber(r)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls []int
	done := make(chan error, 1)
	go func() {
		attempts := 0
		done <- sub.Consume(ctx, "payment-events", "slot-service", func(context.Context, domain.Message) error {
			attempts++
			calls = append(calls, attempts)
			if attempts < 3 {
				return errors.New("db down")
			}
			return nil
		})
	}()

	assert.Eventually(t, func() bool { return len(r.committed()) == 2 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []int{1, 2, 3, 4}, calls)
	assert.Equal(t, []int64{1, 2}, r.committed())
}

func TestConsume_ShutdownLeavesUnappliedMessageUncommitted(t *testing.T) {
	r := &fakeReader{msgs: []kafka.Message{{Offset: 3}}}
	sub := newTestSubscriber(r)
	ctx, cancel := context.WithCancel(context.Background())

	var once sync.Once
	failing := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- sub.Consume(ctx, "payment-events", "slot-service", func(context.Context, domain.Message) error {
			once.Do(func() { close(failing) })
			return errors.New("saga in progress")
		})
	}()

	<-failing
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, r.committed())
}
