package api

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/miradorstack/docrouter-health/internal/config"
	"github.com/miradorstack/docrouter-health/internal/models"
)

func TestServerHealthStatus(t *testing.T) {
	srv, err := NewServer(config.ServerConfig{Address: "127.0.0.1:0", GracefulTimeout: time.Second})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	go func() { _ = srv.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), srv.GracefulTimeout())
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(srv.Address(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		if err != nil {
			t.Fatalf("health check: %v", err)
		}
		return resp.GetStatus()
	}

	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %s", got)
	}

	srv.SetStatus(models.StatusDegraded)
	if got := check(); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("degraded should keep serving, got %s", got)
	}

	srv.SetStatus(models.StatusUnhealthy)
	if got := check(); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %s", got)
	}
}
