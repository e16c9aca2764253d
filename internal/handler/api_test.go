package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/handler"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/cache"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/memstore"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/service"

	"go.uber.org/zap"
)

var ict = time.FixedZone("ICT", 7*3600)

func clock() time.Time { return time.Date(2026, 10, 14, 20, 0, 0, 0, ict) }

type stubGenerator struct {
	resp *domain.InsightResponse
	err  error
}

func (s *stubGenerator) Generate(context.Context, *domain.InsightRequest) (*domain.InsightResponse, error) {
	return s.resp, s.err
}

func newAPI(t *testing.T, gen *stubGenerator) http.Handler {
	t.Helper()
	store := memstore.NewSeeded(clock())
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	dashCache := cache.New[domain.Dashboard](time.Minute)
	insightCache := cache.New[domain.InsightResult](time.Minute)
	t.Cleanup(dashCache.Close)
	t.Cleanup(insightCache.Close)

	dash := service.NewDashboardService(store, dashCache, metrics, logger, clock)
	insight := service.NewInsightService(store, gen, insightCache, resilience.NewBulkhead(2), metrics, logger, clock)
	return handler.NewRouter(dash, insight, metrics, logger, nil)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestListTransactions(t *testing.T) {
	api := newAPI(t, &stubGenerator{err: domain.ErrMissingCredentials})

	rec := do(t, api, http.MethodGet, "/v1/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	list := decode[domain.ListResponse[domain.TransactionView]](t, rec)
	if list.Total != 12 || len(list.Data) != 12 {
		t.Fatalf("expected 12 seed rows, got %d", list.Total)
	}
	if list.Data[0].Date != "2026-10-14" || list.Data[11].Date != "2026-09-12" {
		t.Errorf("unexpected ordering %s..%s", list.Data[0].Date, list.Data[11].Date)
	}
	if list.Data[0].TotalRevenue != list.Data[0].Price*float64(list.Data[0].Quantity) {
		t.Error("expected derived revenue in the view")
	}

	rec = do(t, api, http.MethodGet, "/v1/transactions?q=oversize", "")
	list = decode[domain.ListResponse[domain.TransactionView]](t, rec)
	if list.Total != 3 {
		t.Errorf("expected 3 Oversize rows, got %d", list.Total)
	}
}

func TestCreateTransaction(t *testing.T) {
	api := newAPI(t, &stubGenerator{err: domain.ErrMissingCredentials})

	rec := do(t, api, http.MethodPost, "/v1/transactions",
		`{"productName":"ผ้าพันคอ","price":120,"cost":40,"quantity":2,"platform":"Line"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	view := decode[domain.TransactionView](t, rec)
	if view.ID == "" || view.Date != "2026-10-14" || view.Profit != 160 {
		t.Errorf("unexpected view %+v", view)
	}

	rec = do(t, api, http.MethodGet, "/v1/dashboard/summary?window=today", "")
	summary := decode[domain.SummaryStats](t, rec)
	if summary.TotalOrders != 4 {
		t.Errorf("expected the new row counted today, got %d orders", summary.TotalOrders)
	}
}

func TestCreateTransaction_BadRequests(t *testing.T) {
	api := newAPI(t, &stubGenerator{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed", `{"productName":`},
		{"missing price", `{"productName":"x","cost":1}`},
		{"zero quantity", `{"productName":"x","price":1,"cost":0,"quantity":0}`},
		{"bad status", `{"productName":"x","price":1,"cost":0,"status":"Lost"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, api, http.MethodPost, "/v1/transactions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "error") {
				t.Error("expected an error body")
			}
		})
	}
}

func TestDashboardEndpoints(t *testing.T) {
	api := newAPI(t, &stubGenerator{})

	rec := do(t, api, http.MethodGet, "/v1/dashboard?window=week", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	d := decode[domain.Dashboard](t, rec)
	if d.Window != domain.WindowWeek || d.Summary.TotalOrders != 7 {
		t.Errorf("unexpected dashboard %+v", d.Summary)
	}

	rec = do(t, api, http.MethodGet, "/v1/dashboard", "")
	if d := decode[domain.Dashboard](t, rec); d.Window != domain.WindowAll || d.Summary.TotalOrders != 12 {
		t.Errorf("expected missing window to mean all, got %s/%d", d.Window, d.Summary.TotalOrders)
	}

	rec = do(t, api, http.MethodGet, "/v1/dashboard/trend?window=month", "")
	trend := decode[[]domain.TrendPoint](t, rec)
	if len(trend) == 0 {
		t.Fatal("expected trend points")
	}

	rec = do(t, api, http.MethodGet, "/v1/dashboard/platforms?window=all", "")
	platforms := decode[[]domain.PlatformSlice](t, rec)
	if len(platforms) != 5 {
		t.Errorf("expected 5 seeded platforms, got %d", len(platforms))
	}
	for _, p := range platforms {
		if p.Color == "" || p.Label == "" {
			t.Errorf("expected presentation fields on %+v", p)
		}
	}

	rec = do(t, api, http.MethodGet, "/v1/dashboard/products?limit=3", "")
	products := decode[[]domain.ProductProfit](t, rec)
	if len(products) != 3 {
		t.Errorf("expected 3 products, got %d", len(products))
	}
}

func TestDashboard_InvalidParams(t *testing.T) {
	api := newAPI(t, &stubGenerator{})

	for _, target := range []string{
		"/v1/dashboard?window=year",
		"/v1/dashboard/summary?window=TODAY",
		"/v1/dashboard/products?limit=-1",
		"/v1/dashboard/products?limit=abc",
		"/v1/insights?window=yesterday",
	} {
		method := http.MethodGet
		if strings.HasPrefix(target, "/v1/insights") {
			method = http.MethodPost
		}
		if rec := do(t, api, method, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestInsights_AlwaysWellFormed(t *testing.T) {
	tests := []struct {
		name   string
		gen    *stubGenerator
		source domain.InsightSource
	}{
		{"model", &stubGenerator{resp: &domain.InsightResponse{
			Insight:    domain.SalesInsight{Summary: "ดี", Trend: "ขึ้น", Recommendation: "ขายต่อ"},
			TokensUsed: domain.TokenUsage{TotalTokens: 10},
		}}, domain.InsightSourceModel},
		{"no key", &stubGenerator{err: domain.ErrMissingCredentials}, domain.InsightSourceNoCredentials},
		{"failure", &stubGenerator{err: errors.New("boom")}, domain.InsightSourceError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t, tt.gen)

			rec := do(t, api, http.MethodPost, "/v1/insights?window=week", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			res := decode[domain.InsightResult](t, rec)
			if res.Source != tt.source {
				t.Errorf("expected %s, got %s", tt.source, res.Source)
			}
			if res.Insight.Summary == "" || res.Insight.Trend == "" || res.Insight.Recommendation == "" {
				t.Errorf("expected all insight fields, got %+v", res.Insight)
			}
			if res.TransactionCount != 7 {
				t.Errorf("expected 7 rows this week, got %d", res.TransactionCount)
			}
		})
	}
}

func TestHealthz_ReportsStoreAndGenerator(t *testing.T) {
	api := newAPI(t, &stubGenerator{})

	rec := do(t, api, http.MethodGet, "/healthz", "")
	health := decode[domain.HealthStatus](t, rec)
	if len(health.Services) != 3 {
		t.Fatalf("expected 3 services, got %d", len(health.Services))
	}
	if health.Services[1].Name != "store" || health.Services[1].Detail != "12 transactions" {
		t.Errorf("unexpected store health %+v", health.Services[1])
	}
	if health.Status != "healthy" {
		t.Errorf("expected healthy, got %s", health.Status)
	}
}
