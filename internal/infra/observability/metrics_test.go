package observability_test

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"go.uber.org/zap"
)

func TestInsightSnapshot_Empty(t *testing.T) {
	snap := observability.NewMetrics().GetInsightSnapshot()

	if snap.TotalRequests != 0 || snap.FallbackRate != 0 || snap.CacheHitRate != 0 {
		t.Errorf("expected zero snapshot, got %+v", snap)
	}
	if snap.Period != "all_time" {
		t.Errorf("expected all_time, got %s", snap.Period)
	}
}

func TestInsightSnapshot_Rates(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrInsight(domain.InsightSourceModel)
	m.IncrInsight(domain.InsightSourceModel)
	m.IncrInsight(domain.InsightSourceCache)
	m.IncrInsight(domain.InsightSourceError)
	m.RecordTokens(300, 100)
	m.RecordTokens(500, 100)
	m.IncrCacheHit(observability.CacheInsight)
	m.IncrCacheMiss(observability.CacheInsight)
	m.IncrCacheMiss(observability.CacheInsight)
	m.IncrCacheMiss(observability.CacheInsight)
	m.IncrCacheHit(observability.CacheDashboard)
	m.IncrTransactionCreated()

	snap := m.GetInsightSnapshot()

	if snap.TotalRequests != 4 {
		t.Errorf("expected 4 requests, got %d", snap.TotalRequests)
	}
	if snap.ModelResponses != 2 {
		t.Errorf("expected 2 model responses, got %d", snap.ModelResponses)
	}
	if snap.FallbackRate != 0.25 {
		t.Errorf("expected fallback rate 0.25, got %f", snap.FallbackRate)
	}
	if snap.AvgTokensPerRequest != 500 {
		t.Errorf("expected 500 avg tokens, got %f", snap.AvgTokensPerRequest)
	}
	if snap.CacheHitRate != 0.25 {
		t.Errorf("dashboard hits must not count; expected 0.25, got %f", snap.CacheHitRate)
	}
	if snap.TransactionsCreated != 1 {
		t.Errorf("expected 1 created, got %d", snap.TransactionsCreated)
	}
	want := 0.8*0.0003 + 0.2*0.0025
	if math.Abs(snap.EstimatedCostUsd-want) > 1e-12 {
		t.Errorf("expected cost %f, got %f", want, snap.EstimatedCostUsd)
	}
}

func TestNewLogger_Levels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "bogus"} {
		if observability.NewLogger(lvl) == nil {
			t.Errorf("expected logger for level %q", lvl)
		}
	}
}

func TestZapLoggerMiddleware_PassesThrough(t *testing.T) {
	m := observability.NewMetrics()
	h := observability.ZapLoggerMiddleware(zap.NewNop(), m)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "insight_http_request_duration_seconds" {
			found = true
		}
	}
	if !found {
		t.Error("expected http duration histogram to be recorded")
	}
}

func TestInitTracer_NoEndpoint(t *testing.T) {
	shutdown, err := observability.InitTracer(context.Background(), "", "test")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}
