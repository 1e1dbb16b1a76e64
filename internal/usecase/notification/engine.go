package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/cache"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type EventPublisher interface {
	PublishNotification(ctx context.Context, event publisher.NotificationEvent) error
}

type Dependencies struct {
	Repo      domain.NotificationRepository
	Users     domain.UserDirectory
	Existence cache.ExistenceCache
	Publisher EventPublisher
	Metrics   *metrics.SlotMetrics
	Clock     clock.Clock
	Config    config.NotificationConfig
}

type Engine struct {
	repo      domain.NotificationRepository
	users     domain.UserDirectory
	existence cache.ExistenceCache
	publisher EventPublisher
	metrics   *metrics.SlotMetrics
	clock     clock.Clock
	cfg       config.NotificationConfig
}

func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		repo:      deps.Repo,
		users:     deps.Users,
		existence: deps.Existence,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		cfg:       deps.Config,
	}
	if e.existence == nil {
		e.existence = cache.NoopExistenceCache{}
	}
	if e.clock == nil {
		e.clock = clock.NewSystem()
	}
	if e.cfg.DedupWindow <= 0 {
		e.cfg.DedupWindow = 30 * time.Minute
	}
	if e.cfg.SimilarityThreshold <= 0 {
		e.cfg.SimilarityThreshold = 0.8
	}
	if e.cfg.HighPriorityAttempts == 0 {
		e.cfg.HighPriorityAttempts = 3
	}
	if e.cfg.RetryInitialInterval <= 0 {
		e.cfg.RetryInitialInterval = 200 * time.Millisecond
	}
	return e
}

type CreateInput struct {
	UserID             string
	Type               domain.NotificationType
	Title              string
	Content            string
	RelatedEntityType  string
	RelatedEntityID    string
	Priority           domain.Priority
	SkipDuplicateCheck bool
}

// Create stores a notification and returns it. It returns nil when the user
// is unknown, the notification duplicates a recent one, or the insert failed.
// Create never fails the caller.
func (e *Engine) Create(ctx context.Context, in CreateInput) *domain.Notification {
	priority := in.Priority
	if !priority.Valid() {
		priority = domain.PriorityNormal
	}

	exists, err := e.userExists(ctx, in.UserID)
	if err != nil {
		slog.Warn("user existence check failed, assuming user exists", "user_id", in.UserID, "error", err)
	} else if !exists {
		slog.Warn("notification for unknown user dropped", "user_id", in.UserID, "type", in.Type)
		e.metrics.RecordNotification(string(priority), "unknown_user")
		return nil
	}

	if in.RelatedEntityType != "" && in.RelatedEntityID != "" && !in.SkipDuplicateCheck {
		duplicate, err := e.isDuplicate(ctx, in)
		if err != nil {
			slog.Warn("duplicate check failed, creating notification anyway", "user_id", in.UserID, "error", err)
		} else if duplicate {
			slog.Debug("duplicate notification suppressed",
				"user_id", in.UserID, "type", in.Type,
				"entity_type", in.RelatedEntityType, "entity_id", in.RelatedEntityID)
			e.metrics.RecordNotification(string(priority), "suppressed")
			return nil
		}
	}

	n := &domain.Notification{
		ID:                uuid.New().String(),
		UserID:            in.UserID,
		Type:              in.Type,
		Title:             in.Title,
		Content:           in.Content,
		RelatedEntityType: in.RelatedEntityType,
		RelatedEntityID:   in.RelatedEntityID,
		Priority:          priority,
		CreatedAt:         e.clock.Now(),
	}
	if err := e.insert(ctx, n); err != nil {
		slog.Error("failed to create notification",
			"user_id", n.UserID, "type", n.Type, "priority", n.Priority, "error", err)
		e.metrics.RecordNotification(string(priority), "failed")
		return nil
	}
	e.metrics.RecordNotification(string(priority), "created")

	e.publish(ctx, n)
	return n
}

func (e *Engine) userExists(ctx context.Context, userID string) (bool, error) {
	if e.existence.Known(userID) {
		return true, nil
	}
	if e.users == nil {
		return true, nil
	}
	ok, err := e.users.UserExists(ctx, userID)
	if err != nil {
		return false, err
	}
	if ok {
		e.existence.Remember(userID)
	}
	return ok, nil
}

func (e *Engine) isDuplicate(ctx context.Context, in CreateInput) (bool, error) {
	since := e.clock.Now().Add(-e.cfg.DedupWindow)
	candidates, err := e.repo.FindRecentForEntity(ctx, in.UserID, in.Type, in.RelatedEntityType, in.RelatedEntityID, since)
	if err != nil {
		return false, err
	}
	title := NormalizeTitle(in.Title)
	for _, c := range candidates {
		if NormalizeTitle(c.Title) == title || StringSimilarity(c.Title, in.Title) > e.cfg.SimilarityThreshold {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) publish(ctx context.Context, n *domain.Notification) {
	if e.publisher == nil {
		return
	}
	event := publisher.NotificationEvent{
		NotificationID:    n.ID,
		UserID:            n.UserID,
		Type:              string(n.Type),
		Title:             n.Title,
		Content:           n.Content,
		Priority:          string(n.Priority),
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		CreatedAt:         n.CreatedAt,
	}
	go func(ctx context.Context) {
		if err := e.publisher.PublishNotification(ctx, event); err != nil {
			slog.Error("failed to publish kafka notification event", "notification_id", event.NotificationID, "error", err)
		}
	}(context.WithoutCancel(ctx))
}
