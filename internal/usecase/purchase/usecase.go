package purchase

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/access"
	disputedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/dispute"
	purchasedto "github.com/LavaJover/shvark-slot-service/internal/usecase/dto/purchase"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/shopspring/decimal"
)

const defaultLeaseTTL = 5 * time.Minute

type PurchaseUsecase interface {
	ProcessPayment(ctx context.Context, purchaseID, userID string) (*purchasedto.SagaResult, error)
	HandlePaymentEvent(ctx context.Context, event domain.PaymentEvent) (*purchasedto.SagaResult, error)
	ConfirmAccess(ctx context.Context, input *purchasedto.ConfirmAccessInput) (*purchasedto.ConfirmAccessOutput, error)
	ReissueAccess(ctx context.Context, purchaseID, userID string) (*purchasedto.AccessOutput, error)
	Refund(ctx context.Context, purchaseID string) (*purchasedto.SagaResult, error)
}

type SlotAllocator interface {
	Decrement(ctx context.Context, offerID string) bool
	Restore(ctx context.Context, offerID string) bool
}

type TokenIssuer interface {
	Issue(ctx context.Context, purchaseID, userID string, ttl time.Duration) (*access.IssuedToken, error)
	IssueFallback(ctx context.Context, purchaseID, userID string, ttl time.Duration) (*access.IssuedToken, error)
	Reissue(ctx context.Context, purchaseID, userID string) (*access.IssuedToken, error)
	Revoke(ctx context.Context, purchaseID string) error
}

type Notifier interface {
	Create(ctx context.Context, in notification.CreateInput) *domain.Notification
}

type DisputeOpener interface {
	Open(ctx context.Context, in *disputedto.OpenDisputeInput) (*domain.Dispute, error)
}

type EventPublisher interface {
	PublishPurchase(ctx context.Context, event publisher.PurchaseEvent) error
}

type Dependencies struct {
	Purchases    domain.PurchaseRepository
	Offers       domain.OfferRepository
	Transactions domain.TransactionRepository
	Groups       domain.GroupMembershipRepository
	Steps        domain.SagaStepRepository
	Gateway      domain.PaymentGateway
	Slots        SlotAllocator
	Tokens       TokenIssuer
	Notifier     Notifier
	Disputes     DisputeOpener
	Publisher    EventPublisher
	EventLogger  logger.SagaEventLogger
	Metrics      *metrics.SlotMetrics
	Clock        clock.Clock
	Payment      config.PaymentService
	TokenTTL     time.Duration
	LeaseTTL     time.Duration
}

type DefaultPurchaseUsecase struct {
	purchases    domain.PurchaseRepository
	offers       domain.OfferRepository
	transactions domain.TransactionRepository
	groups       domain.GroupMembershipRepository
	steps        domain.SagaStepRepository
	gateway      domain.PaymentGateway
	slots        SlotAllocator
	tokens       TokenIssuer
	notifier     Notifier
	disputes     DisputeOpener
	publisher    EventPublisher
	eventLogger  logger.SagaEventLogger
	metrics      *metrics.SlotMetrics
	clock        clock.Clock
	feePercent   decimal.Decimal
	tokenTTL     time.Duration
	leaseTTL     time.Duration
}

func NewDefaultPurchaseUsecase(deps Dependencies) *DefaultPurchaseUsecase {
	uc := &DefaultPurchaseUsecase{
		purchases:    deps.Purchases,
		offers:       deps.Offers,
		transactions: deps.Transactions,
		groups:       deps.Groups,
		steps:        deps.Steps,
		gateway:      deps.Gateway,
		slots:        deps.Slots,
		tokens:       deps.Tokens,
		notifier:     deps.Notifier,
		disputes:     deps.Disputes,
		publisher:    deps.Publisher,
		eventLogger:  deps.EventLogger,
		metrics:      deps.Metrics,
		clock:        deps.Clock,
		feePercent:   decimal.NewFromFloat(deps.Payment.PlatformFeePercent),
		tokenTTL:     deps.TokenTTL,
		leaseTTL:     deps.LeaseTTL,
	}
	if uc.clock == nil {
		uc.clock = clock.NewSystem()
	}
	if uc.leaseTTL <= 0 {
		uc.leaseTTL = defaultLeaseTTL
	}
	return uc
}
