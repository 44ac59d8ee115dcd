package grpcapi

import (
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-price-proxy/internal/usecase"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ProxyServiceName is the service reported through grpc.health.v1.
const ProxyServiceName = "price.Proxy"

// HealthHandler mirrors the proxy backoff window into the gRPC health service:
// NOT_SERVING while backing off, SERVING otherwise.
type HealthHandler struct {
	server *health.Server
	proxy  usecase.PriceProxy
	logger *slog.Logger

	mu   sync.Mutex
	last healthpb.HealthCheckResponse_ServingStatus
}

func NewHealthHandler(proxy usecase.PriceProxy, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HealthHandler{
		server: health.NewServer(),
		proxy:  proxy,
		logger: logger,
		last:   healthpb.HealthCheckResponse_SERVICE_UNKNOWN,
	}
	h.Sync()
	return h
}

func (h *HealthHandler) Server() *health.Server {
	return h.server
}

// Sync publishes the current backoff state and returns the resulting status.
func (h *HealthHandler) Sync() healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if h.proxy.Backoff().Active {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if status != h.last {
		h.logger.Info("Price proxy health changed", "service", ProxyServiceName, "status", status.String())
		h.last = status
	}
	h.server.SetServingStatus(ProxyServiceName, status)
	return status
}

// Shutdown marks every service NOT_SERVING ahead of a graceful stop.
func (h *HealthHandler) Shutdown() {
	h.server.Shutdown()
}

func NewGRPCServer(h *HealthHandler) *grpc.Server {
	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, h.server)
	reflection.Register(server)
	return server
}
