package setup

import (
	"fmt"

	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/cache"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/access"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/dispute"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/purchase"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/slot"
)

type UseCases struct {
	Notifications  *notification.Engine
	Issuer         *access.Issuer
	Allocator      *slot.Allocator
	Disputes       *dispute.Opener
	Purchases      purchase.PurchaseUsecase
	ExistenceCache *cache.TTLExistenceCache
}

func InitializeUseCases(deps *Dependencies) (*UseCases, error) {
	cfg := deps.Config
	repos := deps.Repositories

	existence := cache.NewTTLExistenceCache(cfg.NotificationConfig.ExistenceTTL)
	existence.Start()

	notifications := notification.NewEngine(notification.Dependencies{
		Repo:      repos.NotificationRepo,
		Users:     repos.UserDirectory,
		Existence: existence,
		Publisher: deps.Publisher,
		Metrics:   deps.Metrics,
		Clock:     deps.Clock,
		Config:    cfg.NotificationConfig,
	})

	issuer := access.NewIssuer(repos.AccessTokenRepo, deps.Clock, deps.Metrics, cfg.AccessConfig)
	allocator := slot.NewAllocator(repos.OfferRepo, deps.Metrics)

	disputes, err := dispute.NewOpener(repos.DisputeRepo, notifications, deps.Publisher, deps.Metrics, deps.Clock, cfg.DisputeConfig)
	if err != nil {
		return nil, fmt.Errorf("dispute opener: %w", err)
	}

	purchases := purchase.NewDefaultPurchaseUsecase(purchase.Dependencies{
		Purchases:    repos.PurchaseRepo,
		Offers:       repos.OfferRepo,
		Transactions: repos.TransactionRepo,
		Groups:       repos.GroupRepo,
		Steps:        repos.SagaStepRepo,
		Gateway:      deps.Gateway,
		Slots:        allocator,
		Tokens:       issuer,
		Notifier:     notifications,
		Disputes:     disputes,
		Publisher:    deps.Publisher,
		EventLogger:  deps.EventLogger,
		Metrics:      deps.Metrics,
		Clock:        deps.Clock,
		Payment:      cfg.PaymentService,
		TokenTTL:     cfg.AccessConfig.TokenTTL,
		LeaseTTL:     cfg.SagaConfig.LeaseTTL,
	})

	return &UseCases{
		Notifications:  notifications,
		Issuer:         issuer,
		Allocator:      allocator,
		Disputes:       disputes,
		Purchases:      purchases,
		ExistenceCache: existence,
	}, nil
}
