package notification

import (
	"context"
	"log/slog"
)

// Mutations are scoped by userID and report success as a bool. An empty id
// list is a successful no-op.

func (e *Engine) MarkAsRead(ctx context.Context, ids []string, userID string) bool {
	if len(ids) == 0 {
		return true
	}
	return e.run("mark notifications read", userID, func() (int64, error) {
		return e.repo.MarkRead(ctx, userID, ids)
	})
}

func (e *Engine) MarkAllAsRead(ctx context.Context, userID string) bool {
	return e.run("mark all notifications read", userID, func() (int64, error) {
		return e.repo.MarkAllRead(ctx, userID)
	})
}

// MarkEntityAsRead marks every unread notification about one entity.
func (e *Engine) MarkEntityAsRead(ctx context.Context, userID, entityType, entityID string) bool {
	return e.run("mark entity notifications read", userID, func() (int64, error) {
		return e.repo.MarkEntityRead(ctx, userID, entityType, entityID)
	})
}

func (e *Engine) Delete(ctx context.Context, id, userID string) bool {
	if id == "" {
		return true
	}
	return e.DeleteMany(ctx, []string{id}, userID)
}

func (e *Engine) DeleteMany(ctx context.Context, ids []string, userID string) bool {
	if len(ids) == 0 {
		return true
	}
	return e.run("delete notifications", userID, func() (int64, error) {
		return e.repo.DeleteNotifications(ctx, userID, ids)
	})
}

func (e *Engine) DeleteAll(ctx context.Context, userID string) bool {
	return e.run("delete all notifications", userID, func() (int64, error) {
		return e.repo.DeleteAllNotifications(ctx, userID)
	})
}

func (e *Engine) DeleteAllRead(ctx context.Context, userID string) bool {
	return e.run("delete read notifications", userID, func() (int64, error) {
		return e.repo.DeleteReadNotifications(ctx, userID)
	})
}

func (e *Engine) DeleteByEntity(ctx context.Context, userID, entityType, entityID string) bool {
	return e.run("delete entity notifications", userID, func() (int64, error) {
		return e.repo.DeleteEntityNotifications(ctx, userID, entityType, entityID)
	})
}

func (e *Engine) run(op, userID string, fn func() (int64, error)) bool {
	affected, err := fn()
	if err != nil {
		slog.Error("failed to "+op, "user_id", userID, "error", err)
		return false
	}
	slog.Debug(op, "user_id", userID, "affected", affected)
	return true
}
