package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront-service/internal/api"
	"storefront-service/internal/config"
	"storefront-service/internal/logging"
	"storefront-service/internal/store"
)

const serviceName = "storefront-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting service", slog.String("app_env", cfg.AppEnv), slog.String("log_level", cfg.LogLevel))

	// --- Database Connection ---
	db, err := sql.Open("postgres", cfg.Postgres.DSN())
	if err != nil {
		logger.Error("failed to initialize database connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	dbStore := store.NewPostgresStore(db)
	if cfg.Migrate {
		if err := dbStore.Migrate(pingCtx); err != nil {
			logger.Error("schema migration failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("schema migration applied")
	}
	logger.Info("database connection established")

	// --- Initialize API Handlers ---
	httpAPIHandler := api.NewHTTPHandler(api.Stores{
		Products: dbStore,
		Feedback: dbStore,
		Reviews:  dbStore,
		Users:    dbStore,
		Health:   dbStore,
	}, cfg.Admin, cfg.Catalog, logger)
	limiter := api.NewRateLimiter(cfg.HttpServer.RateLimitRPS, cfg.HttpServer.RateLimitBurst, 3*time.Minute)
	httpAPIHandler.LimitPublicWrites(limiter.Middleware(logger))
	grpcAPIHandler := api.NewGRPCHandler(dbStore, cfg.Catalog.PageSize, logger)

	// --- Setup & Start HTTP Server ---
	metrics := api.NewMetrics(serviceName)
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, logger, metrics, cfg.HttpServer.AllowedOrigins)
	httpRouter.Handle("/metrics", metrics.Handler())
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(logger, grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Error("failed to listen for gRPC", slog.String("port", cfg.GrpcServer.Port), slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC server Serve error", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("gRPC server has stopped")
	}()

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, dbStore, shutdownComplete)

	<-shutdownComplete
	logger.Info("service shutdown sequence finished")
}

func setupBaseMiddleware(router *chi.Mux, logger *slog.Logger, metrics *api.Metrics, allowedOrigins []string) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(api.CORS(allowedOrigins))
	router.Use(metrics.Middleware)
	router.Use(middleware.Timeout(60 * time.Second))
}

func setupGRPCServer(logger *slog.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		api.UnaryRecoveryInterceptor(logger),
		api.UnaryLoggingInterceptor(logger),
	))

	api.RegisterCatalogServer(s, grpcAPIHandler)
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	// Reflection lets grpcurl list the hand-written service.
	reflection.Register(s)
	logger.Info("gRPC services registered", slog.String("service", api.CatalogServiceName))

	return s
}

func waitForShutdown(
	logger *slog.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	dbStore *store.PostgresStore,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("starting graceful shutdown", slog.String("signal", receivedSignal.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", slog.String("error", shutdownCtx.Err().Error()))
		grpcServer.Stop()
	}

	if err := dbStore.Close(); err != nil {
		logger.Warn("error closing database connection", slog.String("error", err.Error()))
	}
	logger.Info("graceful shutdown sequence completed")
}
