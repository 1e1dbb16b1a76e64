package dispute

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	disputedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/dispute"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/jaevor/go-nanoid"
)

type EventPublisher interface {
	PublishDispute(ctx context.Context, event publisher.DisputeEvent) error
}

type Notifier interface {
	Create(ctx context.Context, in notification.CreateInput) *domain.Notification
}

type Opener struct {
	disputes  domain.DisputeRepository
	notifier  Notifier
	publisher EventPublisher
	metrics   *metrics.SlotMetrics
	clock     clock.Clock
	cfg       config.DisputeConfig
	newID     func() string
}

func NewOpener(
	disputes domain.DisputeRepository,
	notifier Notifier,
	eventPublisher EventPublisher,
	m *metrics.SlotMetrics,
	clk clock.Clock,
	cfg config.DisputeConfig,
) (*Opener, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	if cfg.ResolutionPeriod <= 0 {
		cfg.ResolutionPeriod = 72 * time.Hour
	}
	return &Opener{
		disputes:  disputes,
		notifier:  notifier,
		publisher: eventPublisher,
		metrics:   m,
		clock:     clk,
		cfg:       cfg,
		newID:     idGenerator,
	}, nil
}

// Open records an "access not working" dispute against the offer of the
// purchase and notifies the reporter and the seller.
func (o *Opener) Open(ctx context.Context, in *disputedto.OpenDisputeInput) (*domain.Dispute, error) {
	if in == nil || in.Purchase == nil || in.Transaction == nil {
		return nil, fmt.Errorf("dispute requires a purchase and its transaction")
	}
	now := o.clock.Now()
	dispute := &domain.Dispute{
		ID:                 o.newID(),
		ReporterID:         in.ReporterID,
		ReportedEntityType: domain.EntityOffer,
		ReportedEntityID:   in.Purchase.OfferID,
		TransactionID:      in.Transaction.ID,
		PurchaseID:         in.Purchase.ID,
		DisputeType:        domain.DisputeAccessNotWorking,
		Description:        in.Description,
		Status:             domain.DisputeOpened,
		ResolutionDeadline: now.Add(o.cfg.ResolutionPeriod),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := o.disputes.CreateDispute(ctx, dispute); err != nil {
		return nil, fmt.Errorf("failed to create dispute: %w", err)
	}
	o.metrics.RecordDisputeOpened()
	slog.Info("dispute opened", "dispute_id", dispute.ID, "purchase_id", dispute.PurchaseID, "reporter_id", dispute.ReporterID)

	o.notifier.Create(ctx, notification.CreateInput{
		UserID:            in.ReporterID,
		Type:              domain.NotificationDisputeCreated,
		Title:             "Dispute opened",
		Content:           "We received your report that the purchased access does not work. We will get back to you before " + dispute.ResolutionDeadline.Format(time.RFC1123) + ".",
		RelatedEntityType: domain.EntityDispute,
		RelatedEntityID:   dispute.ID,
		Priority:          domain.PriorityNormal,
	})
	o.notifier.Create(ctx, notification.CreateInput{
		UserID:            in.Transaction.SellerID,
		Type:              domain.NotificationDisputeReported,
		Title:             "A buyer reported a problem with access",
		Content:           "A buyer reported that the access they purchased does not work. Please respond before " + dispute.ResolutionDeadline.Format(time.RFC1123) + ".",
		RelatedEntityType: domain.EntityDispute,
		RelatedEntityID:   dispute.ID,
		Priority:          domain.PriorityHigh,
	})

	if o.publisher != nil {
		event := publisher.DisputeEvent{
			DisputeID:          dispute.ID,
			PurchaseID:         dispute.PurchaseID,
			TransactionID:      dispute.TransactionID,
			OfferID:            dispute.ReportedEntityID,
			ReporterID:         dispute.ReporterID,
			SellerID:           in.Transaction.SellerID,
			DisputeType:        dispute.DisputeType,
			Description:        dispute.Description,
			Status:             string(dispute.Status),
			ResolutionDeadline: dispute.ResolutionDeadline,
		}
		go func(ctx context.Context) {
			if err := o.publisher.PublishDispute(ctx, event); err != nil {
				slog.Error("failed to publish kafka dispute event", "dispute_id", event.DisputeID, "error", err)
			}
		}(context.WithoutCancel(ctx))
	}

	return dispute, nil
}

func (o *Opener) Get(ctx context.Context, disputeID string) (*domain.Dispute, error) {
	return o.disputes.GetDisputeByID(ctx, disputeID)
}

func (o *Opener) ListForPurchase(ctx context.Context, purchaseID string) ([]*domain.Dispute, error) {
	return o.disputes.GetDisputesByPurchaseID(ctx, purchaseID)
}
