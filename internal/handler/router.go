package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Either service may be nil; its routes are then not mounted.
func NewRouter(
	dashSvc *service.DashboardService,
	insightSvc *service.InsightService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	corsOrigins []string,
) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(dashSvc, insightSvc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if dashSvc != nil {
			// Transactions
			r.Get("/transactions", listTransactionsHandler(dashSvc, logger))
			r.Post("/transactions", createTransactionHandler(dashSvc, logger))

			// Dashboard
			r.Get("/dashboard", dashboardHandler(dashSvc, logger))
			r.Get("/dashboard/summary", summaryHandler(dashSvc, logger))
			r.Get("/dashboard/trend", trendHandler(dashSvc, logger))
			r.Get("/dashboard/platforms", platformsHandler(dashSvc, logger))
			r.Get("/dashboard/products", topProductsHandler(dashSvc, logger))
		}

		if insightSvc != nil {
			r.Post("/insights", insightHandler(insightSvc, logger))
		}

		r.Get("/metrics/insight", insightMetricsHandler(metrics))
	})

	return r
}

func healthzHandler(dashSvc *service.DashboardService, insightSvc *service.InsightService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "insight-api", Status: "healthy", LastChecked: now},
		}

		if dashSvc != nil {
			start := time.Now()
			n, err := dashSvc.Count(ctx)
			sh := domain.ServiceHealth{
				Name:        "store",
				Status:      "healthy",
				Detail:      fmt.Sprintf("%d transactions", n),
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if err != nil {
				sh.Status = "unhealthy"
				sh.Detail = err.Error()
			}
			services = append(services, sh)
		}

		if insightSvc != nil {
			sh := domain.ServiceHealth{Name: "gemini", Status: "healthy", LastChecked: now}
			if !insightSvc.Configured() {
				sh.Status = "degraded"
				sh.Detail = "api key not configured, insights use the fallback"
			}
			services = append(services, sh)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		status := http.StatusOK
		if overallStatus == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func insightMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetInsightSnapshot())
	}
}
