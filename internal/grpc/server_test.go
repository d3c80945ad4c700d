package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		store    Pinger
		service  string
		expected grpc_health_v1.HealthCheckResponse_ServingStatus
	}{
		{"healthy", stubPinger{}, "", grpc_health_v1.HealthCheckResponse_SERVING},
		{"named service", stubPinger{}, ServiceName, grpc_health_v1.HealthCheckResponse_SERVING},
		{"ping fails", stubPinger{err: errors.New("no reachable servers")}, "", grpc_health_v1.HealthCheckResponse_NOT_SERVING},
		{"no store", nil, "", grpc_health_v1.HealthCheckResponse_NOT_SERVING},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHealthServer(tc.store)
			resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: tc.service})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.GetStatus() != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, resp.GetStatus())
			}
		})
	}
}

func TestCheckUnknownService(t *testing.T) {
	h := NewHealthServer(stubPinger{})

	_, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "billing"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestServerOverBufconn(t *testing.T) {
	lis := bufconn.Listen(1024 * 1024)
	srv := NewServer(NewHealthServer(stubPinger{}), zap.NewNop())
	go func() {
		_ = srv.Serve(lis)
	}()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-1")
	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %s", resp.GetStatus())
	}
}
