package grpcapi

import (
	"context"
	"testing"

	"github.com/LavaJover/shvark-price-proxy/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type stubProxy struct {
	active bool
}

func (s *stubProxy) Rates(context.Context, string, string) (domain.Quote, domain.QuoteSource) {
	return domain.Quote{}, domain.SourceFallback
}

func (s *stubProxy) Backoff() domain.BackoffSnapshot {
	return domain.BackoffSnapshot{Active: s.active}
}

func checkStatus(t *testing.T, h *HealthHandler) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: ProxyServiceName})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthHandler_FollowsBackoff(t *testing.T) {
	proxy := &stubProxy{}
	h := NewHealthHandler(proxy, nil)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h))

	proxy.active = true
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, h.Sync())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h))

	proxy.active = false
	h.Sync()
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkStatus(t, h))
}

func TestHealthHandler_Shutdown(t *testing.T) {
	h := NewHealthHandler(&stubProxy{}, nil)
	h.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkStatus(t, h))
}

func TestNewGRPCServer(t *testing.T) {
	server := NewGRPCServer(NewHealthHandler(&stubProxy{}, nil))
	defer server.Stop()

	info := server.GetServiceInfo()
	assert.Contains(t, info, healthpb.Health_ServiceDesc.ServiceName)
}
