package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schoolbff/internal/bff/authctx"
	"schoolbff/internal/bff/client"
	"schoolbff/internal/bff/config"
	"schoolbff/internal/bff/handler"
	"schoolbff/internal/bff/metrics"
	"schoolbff/internal/bff/repository"
	"schoolbff/internal/bff/router"
	"schoolbff/internal/bff/service"
	"schoolbff/internal/bff/tenant"
	"schoolbff/internal/bff/util"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	if err := run(); err != nil {
		util.GetLogger().Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, port string
	flagSet := pflag.NewFlagSet("school-bff", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML config file (environment variables override it)")
	flagSet.StringVar(&port, "port", "", "listen port (overrides PORT)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// 1. Load Config
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != "" {
		cfg.Port = port
	}

	// 2. Init Logger
	util.InitLogger(cfg.LogLevel)
	logger := util.GetLogger()

	// 3. Sync log storage, optional
	var syncLogRepo repository.SyncLogRepository = repository.NoopSyncLogRepository{}
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		repo := repository.NewMongoSyncLogRepository(mongoClient.Database(cfg.DBName), cfg.SyncLogsCollection)
		if err := repo.EnsureSyncLogIndexes(context.Background()); err != nil {
			logger.Warn("Failed to ensure sync log indexes", "error", err)
		}
		syncLogRepo = repo
	} else {
		logger.Info("MONGO_URI not set, sync logs are not stored")
	}

	// 4. Init Layers
	m := metrics.NewProm(cfg.MetricsNamespace)
	upstream := client.NewClient(cfg.UpstreamBaseURL,
		&http.Client{Timeout: cfg.HTTPClientTimeout},
		client.WithBudgets(client.Budgets{
			Read:   cfg.UpstreamReadTimeout,
			Update: cfg.UpstreamUpdateTimeout,
			Heavy:  cfg.UpstreamHeavyTimeout,
		}),
	)
	resolver, err := authctx.NewResolver()
	if err != nil {
		return err
	}
	svc := service.NewService(upstream, service.NewOrchestrator(cfg.BatchChunkSize, m), syncLogRepo)
	h := handler.NewCriteriaHandler(svc)
	auth := handler.NewAuthMiddleware(resolver, tenant.NewNormalizer(upstream))

	// 5. Init Echo & Routes
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			)
			return nil
		},
	}))
	router.RegisterRoutes(e, h, auth, m, cfg.AllowOrigins)

	// 6. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "upstream", cfg.UpstreamBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	logger.Info("Shutting down server...")

	// In-flight batches may run up to the heavy budget per chunk.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamHeavyTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server Shutdown Failed", "error", err)
	}

	if mongoClient != nil {
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error("Failed to disconnect DB", "error", err)
		}
	}

	logger.Info("Server exited properly")
	return nil
}
