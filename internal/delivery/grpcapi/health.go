package grpcapi

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service key reported for the slot service.
const ServiceName = "shvark.slot.v1.SlotService"

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	server *health.Server
	db     Pinger
}

// NewServer builds the gRPC server with the health service registered.
func NewServer(db Pinger) (*grpc.Server, *HealthHandler) {
	grpcServer := grpc.NewServer()
	h := &HealthHandler{server: health.NewServer(), db: db}
	healthpb.RegisterHealthServer(grpcServer, h.server)
	h.server.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return grpcServer, h
}

// Check pings the database and updates the reported serving status.
func (h *HealthHandler) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.db != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.server.SetServingStatus(ServiceName, status)
	h.server.SetServingStatus("", status)
	return status
}

// Watch re-runs Check every interval until ctx is done.
func (h *HealthHandler) Watch(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}

func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}
