package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/app/background"
	"github.com/LavaJover/shvark-slot-service/internal/app/setup"
	"github.com/LavaJover/shvark-slot-service/internal/auth"
	"github.com/LavaJover/shvark-slot-service/internal/delivery/grpcapi"
	"github.com/LavaJover/shvark-slot-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/migrate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the gRPC health server and background workers",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	if serveMigrate {
		if err := migrate.RunMigrations(deps.DB, cfg.SlotDB.MigrationsPath); err != nil {
			return err
		}
	}

	ucs, err := setup.InitializeUseCases(deps)
	if err != nil {
		return err
	}
	defer ucs.ExistenceCache.Stop()

	resolver, err := auth.NewJWTResolver(cfg.AuthConfig.JWTSecret)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Purchases:      handlers.NewPurchaseHandler(ucs.Purchases, ucs.Issuer, ucs.Disputes),
		Notifications:  handlers.NewNotificationHandler(ucs.Notifications),
		Resolver:       resolver,
		WebhookSecret:  cfg.WebhookConfig.Secret,
		AdminToken:     cfg.AuthConfig.AdminToken,
		MetricsHandler: promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
	})
	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	grpcServer, health := grpcapi.NewServer(sqlDB)
	lis, err := net.Listen("tcp", net.JoinHostPort(cfg.GRPCServer.Host, cfg.GRPCServer.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	tasks := &background.BackgroundTasks{
		Tokens:     ucs.Issuer,
		Payments:   ucs.Purchases,
		Subscriber: deps.Subscriber,
		Health:     health,
		Access:     cfg.AccessConfig,
		Kafka:      cfg.KafkaService,
	}
	tasks.StartAll(ctx)

	errCh := make(chan error, 2)
	go func() {
		slog.Info("gRPC server started", "addr", lis.Addr().String())
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		slog.Info("HTTP server started", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err = <-errCh:
		slog.Error("server stopped", "error", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	health.Shutdown()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Error("http shutdown failed", "error", shutdownErr)
	}
	grpcServer.GracefulStop()
	return err
}
