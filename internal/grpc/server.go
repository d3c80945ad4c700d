package grpc

import (
	"context"

	"github.com/ecommerce-api/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ServiceName is the name health checks may ask about besides the empty
// whole-server name.
const ServiceName = "ecommerce.API"

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer answers grpc.health.v1 checks by pinging the document store.
type HealthServer struct {
	grpc_health_v1.UnimplementedHealthServer
	store Pinger
}

// NewHealthServer accepts a nil store, which always reports NOT_SERVING.
func NewHealthServer(store Pinger) *HealthServer {
	return &HealthServer{store: store}
}

func (s *HealthServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	log := logger.FromContext(ctx)

	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Error(codes.NotFound, "unknown service")
	}

	if s.store == nil {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}

	if err := s.store.Ping(ctx); err != nil {
		log.Warn("health check: store ping failed", zap.Error(err))
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

// NewServer returns a gRPC server exposing the health service, with every
// call logged under a request id.
func NewServer(health *HealthServer, log *zap.Logger) *grpc.Server {
	srv := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log)))
	grpc_health_v1.RegisterHealthServer(srv, health)
	return srv
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		reqLog := log.With(zap.String(logger.RequestIDKey, requestID(ctx)))
		ctx = logger.WithContext(ctx, reqLog)

		resp, err := handler(ctx, req)
		if err != nil {
			reqLog.Warn("grpc call failed", zap.String("method", info.FullMethod), zap.Error(err))
		} else {
			reqLog.Debug("grpc call", zap.String("method", info.FullMethod))
		}
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if values := md.Get("x-request-id"); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}
