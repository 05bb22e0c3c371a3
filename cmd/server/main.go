package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"leaseline.app/leaseline/common/id"
	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/common/logger"
	"leaseline.app/leaseline/common/otel"
	"leaseline.app/leaseline/core/config"
	"leaseline.app/leaseline/core/db"
	"leaseline.app/leaseline/internal/engine"
	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/http/middleware"
	httprouter "leaseline.app/leaseline/internal/http/router"
	"leaseline.app/leaseline/internal/lease"
	"leaseline.app/leaseline/internal/lock"
	"leaseline.app/leaseline/internal/service"
	"leaseline.app/leaseline/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "leaseline starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	locker := setupLocker(ctx, cfg.Redis)

	analysisClient, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.AnalysisModel,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create analysis client", "error", err)
		os.Exit(1)
	}

	letterClient, err := llm.New(llm.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Model:   cfg.OpenAI.LetterModel,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create letter client", "error", err)
		os.Exit(1)
	}

	var zillow *estimator.ZillowClient
	if cfg.Estimator.ZillowEnabled {
		zillow = estimator.NewZillowClient(cfg.Estimator.HTTPTimeout)
	}

	stores := store.NewStores(database.Pool())

	services := service.NewServices(service.ServicesConfig{
		Stores:    stores,
		Engine:    engine.New(analysisClient, letterClient, cfg.Engine),
		Estimator: estimator.New(zillow, analysisClient, cfg.Estimator),
		Locker:    locker,
		Leases:    lease.NewGenerator(cfg.Lease),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// setupLocker prefers Redis so negotiation updates stay serialized across
// replicas; without a Redis URL it falls back to an in-process lock, which is
// correct for a single instance.
func setupLocker(ctx context.Context, cfg config.RedisConfig) lock.TenantLocker {
	if !cfg.Enabled() {
		slog.InfoContext(ctx, "redis not configured, using in-process tenant locks")
		return lock.NewLocalLocker()
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "redis connected")

	return lock.NewRedisLocker(client, cfg.LockTTL)
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		IsProduction: cfg.IsProduction(),
	})

	return router
}

const banner = `
██╗     ███████╗ █████╗ ███████╗███████╗██╗     ██╗███╗   ██╗███████╗
██║     ██╔════╝██╔══██╗██╔════╝██╔════╝██║     ██║████╗  ██║██╔════╝
██║     █████╗  ███████║███████╗█████╗  ██║     ██║██╔██╗ ██║█████╗
██║     ██╔══╝  ██╔══██║╚════██║██╔══╝  ██║     ██║██║╚██╗██║██╔══╝
███████╗███████╗██║  ██║███████║███████╗███████╗██║██║ ╚████║███████╗
╚══════╝╚══════╝╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝
`
