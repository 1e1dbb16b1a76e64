package setup

import (
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-slot-service/internal/clock"
	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	publisher "github.com/LavaJover/shvark-slot-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/payment"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/postgres/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config       *config.SlotConfig
	DB           *gorm.DB
	Publisher    *publisher.DefaultKafkaPublisher
	Subscriber   *publisher.DefaultKafkaSubscriber
	Gateway      domain.PaymentGateway
	Metrics      *metrics.SlotMetrics
	Registry     *prometheus.Registry
	EventLogger  logger.SagaEventLogger
	Clock        clock.Clock
	Repositories *Repositories
}

type Repositories struct {
	OfferRepo        domain.OfferRepository
	PurchaseRepo     domain.PurchaseRepository
	TransactionRepo  domain.TransactionRepository
	AccessTokenRepo  domain.AccessTokenRepository
	NotificationRepo domain.NotificationRepository
	DisputeRepo      domain.DisputeRepository
	SagaStepRepo     domain.SagaStepRepository
	GroupRepo        domain.GroupMembershipRepository
	UserDirectory    domain.UserDirectory
}

func InitializeDependencies(cfg *config.SlotConfig) (*Dependencies, error) {
	db := postgres.MustInitDB(cfg)

	pub, err := publisher.NewDefaultKafkaPublisher(cfg.KafkaService)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	sub, err := publisher.NewDefaultKafkaSubscriber(cfg.KafkaService)
	if err != nil {
		return nil, fmt.Errorf("kafka subscriber: %w", err)
	}
	gateway, err := payment.NewGateway(cfg.PaymentService)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Dependencies{
		Config:      cfg,
		DB:          db,
		Publisher:   pub,
		Subscriber:  sub,
		Gateway:     gateway,
		Metrics:     metrics.NewSlotMetrics(registry),
		Registry:    registry,
		EventLogger: logger.NewPGSagaEventLogger(db),
		Clock:       clock.NewSystem(),
		Repositories: &Repositories{
			OfferRepo:        repository.NewDefaultOfferRepository(db),
			PurchaseRepo:     repository.NewDefaultPurchaseRepository(db),
			TransactionRepo:  repository.NewDefaultTransactionRepository(db),
			AccessTokenRepo:  repository.NewDefaultAccessTokenRepository(db),
			NotificationRepo: repository.NewDefaultNotificationRepository(db),
			DisputeRepo:      repository.NewDefaultDisputeRepository(db),
			SagaStepRepo:     repository.NewDefaultSagaStepRepository(db),
			GroupRepo:        repository.NewDefaultGroupMembershipRepository(db),
			UserDirectory:    repository.NewDefaultUserDirectory(db),
		},
	}, nil
}

func (d *Dependencies) Close() {
	if err := d.Publisher.Close(); err != nil {
		slog.Error("failed to close kafka publisher", "error", err)
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
