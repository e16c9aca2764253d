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

	"github.com/boddenberg/merchant-insight-bfa-go/internal/config"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/handler"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/cache"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/gemini"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/memstore"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "read .env: %v\n", err)
		os.Exit(1)
	}

	// --- Config ---
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("timezone", cfg.Timezone),
		zap.Bool("seed_data", cfg.SeedData),
		zap.String("gemini_model", cfg.GeminiModel),
		zap.Bool("gemini_configured", cfg.GeminiAPIKey != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "merchant-insight-bfa")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}()

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Clock ---
	loc := cfg.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	// --- Store ---
	var store *memstore.Store
	if cfg.SeedData {
		store = memstore.NewSeeded(clock())
		logger.Info("store seeded with demo transactions", zap.Int("count", store.Len()))
	} else {
		store = memstore.New()
	}
	metrics.SetTransactionsStored(store.Len())

	// --- Cache ---
	dashboardCache := cache.New[domain.Dashboard](cfg.CacheTTL)
	defer dashboardCache.Close()
	insightCache := cache.New[domain.InsightResult](cfg.CacheTTL)
	defer insightCache.Close()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("gemini", logger)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	generator := gemini.NewClient(httpClient, cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, cb, resilienceCfg)
	if !generator.Configured() {
		logger.Warn("GEMINI_API_KEY not set, insights will return the fallback message")
	}

	// --- Services ---
	dashboardSvc := service.NewDashboardService(store, dashboardCache, metrics, logger, clock)
	insightSvc := service.NewInsightService(
		store,
		generator,
		insightCache,
		resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics,
		logger,
		clock,
	)

	// --- Router ---
	router := handler.NewRouter(dashboardSvc, insightSvc, metrics, logger, cfg.CORSOrigins)

	// --- Server ---
	// Insight requests can spend every retry on the upstream before answering.
	writeTimeout := time.Duration(cfg.MaxRetries+1)*cfg.HTTPTimeout + 10*time.Second
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
