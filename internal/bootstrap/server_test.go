package bootstrap

import (
	"context"
	"net/http"
	"testing"

	"github.com/Domenick1991/surgefare/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestNewServers(t *testing.T) {
	cfg := config.Default()
	handler := http.NewServeMux()

	s := newServers(cfg, handler)

	assert.Equal(t, cfg.HTTP.Address, s.httpServer.Addr)
	assert.Equal(t, handler, s.httpServer.Handler)

	resp, err := s.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	s.health.Shutdown()
	resp, err = s.health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	_, ok := s.grpcServer.GetServiceInfo()[healthpb.Health_ServiceDesc.ServiceName]
	assert.True(t, ok)
}
