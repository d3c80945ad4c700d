package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ecommerce-api/internal/config"
	"github.com/ecommerce-api/internal/events"
	grpcserver "github.com/ecommerce-api/internal/grpc"
	handler "github.com/ecommerce-api/internal/http"
	"github.com/ecommerce-api/internal/logger"
	"github.com/ecommerce-api/internal/metrics"
	"github.com/ecommerce-api/internal/model"
	"github.com/ecommerce-api/internal/repo"
	"github.com/ecommerce-api/internal/service"
	"github.com/ecommerce-api/pkg/tracing"
)

const serviceName = "ecommerce-api"

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := openStore(ctx, cfg, log)

	var publisher events.Publisher
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		redisClient = redis.NewClient(opt)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed, events may be dropped", zap.Error(err))
		} else {
			log.Info("connected to redis")
		}
		publisher = events.NewRedisPublisher(redisClient)

		consumer := events.NewConsumer(redisClient, log)
		go consumer.Subscribe(ctx,
			events.CreatedChannel(model.ProductCollection),
			events.CreatedChannel(model.OrderCollection),
		)
	}

	catalog := service.NewCatalogService(store, publisher)
	diagnostics := service.NewDiagnostics(store, cfg.DatabaseURL)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.New(reg)

	middleware := []gin.HandlerFunc{httpMetrics.Middleware()}

	var tracer tracing.Tracer
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithReconnectionPeriod(5*time.Second),
			otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return fmt.Errorf("init trace exporter: %w", err)
		}
		tracer = tracing.NewTracer(serviceName, exporter)
		middleware = append(middleware, tracing.Middleware(tracer))
	}

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(log, handler.NewHandler(catalog, diagnostics), middleware...)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Info("starting http server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http listen failed", zap.Error(err))
		}
	}()

	grpcSrv := grpcserver.NewServer(grpcserver.NewHealthServer(store), log)
	if cfg.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go func() {
			log.Info("starting grpc server", zap.Int("port", cfg.GRPCPort))
			if err := grpcSrv.Serve(lis); err != nil {
				log.Error("grpc server stopped", zap.Error(err))
			}
		}()
	}

	var diagSrv *metrics.Server
	if cfg.DiagnosticsPort > 0 {
		diagSrv = metrics.NewServer(cfg.DiagnosticsPort, reg)
		go func() {
			log.Info("starting diagnostics server", zap.Int("port", cfg.DiagnosticsPort))
			if err := diagSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("diagnostics server stopped", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	if diagSrv != nil {
		if err := diagSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("error stopping diagnostics server", zap.Error(err))
		}
	}
	if tracer != nil {
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("error flushing traces", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("error closing redis connection", zap.Error(err))
		}
	}
	if store != nil {
		if err := store.Close(shutdownCtx); err != nil {
			log.Error("error closing store", zap.Error(err))
		}
	}

	log.Info("server exiting")
	return nil
}

// openStore returns nil when no handle can be created; the API then serves
// 500s for data endpoints and /test reports the store as not initialized.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) repo.DocumentStore {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL is not set, running without a store")
		return nil
	}

	var (
		store repo.DocumentStore
		err   error
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		var pg *repo.PostgresDocumentStore
		pg, err = repo.ConnectPostgres(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err == nil {
			store = pg
			if schemaErr := pg.EnsureSchema(ctx); schemaErr != nil {
				log.Warn("postgres schema not applied", zap.Error(schemaErr))
			}
		}
	default:
		var mg *repo.MongoDocumentStore
		mg, err = repo.ConnectMongo(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.StoreTimeout)
		if err == nil {
			store = mg
		}
	}
	if err != nil {
		log.Error("failed to initialise store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		log.Warn("store not reachable yet", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	} else {
		log.Info("connected to store", zap.String("driver", cfg.StoreDriver), zap.String("database", store.Name()))
	}
	return store
}
