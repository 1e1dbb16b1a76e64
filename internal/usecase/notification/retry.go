package notification

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/cenkalti/backoff/v5"
)

// insert makes a single attempt for normal and low priority. High priority
// inserts are retried with exponential backoff up to HighPriorityAttempts.
// A retry that finds the row already stored means an earlier attempt
// committed without reporting it.
func (e *Engine) insert(ctx context.Context, n *domain.Notification) error {
	if n.Priority != domain.PriorityHigh {
		return e.repo.CreateNotification(ctx, n)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.cfg.RetryInitialInterval
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := e.repo.CreateNotification(ctx, n)
		if attempt > 1 && errors.Is(err, domain.ErrNotificationExists) {
			return struct{}{}, nil
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(e.cfg.HighPriorityAttempts))
	return err
}
