package observability

import (
	"strconv"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Gemini 2.5 Flash list price, USD per 1k tokens.
const (
	promptCostPer1K     = 0.0003
	completionCostPer1K = 0.0025
)

// Cache names used as label values.
const (
	CacheInsight   = "insight"
	CacheDashboard = "dashboard"
)

// Metrics holds all Prometheus metrics for the insight service.
type Metrics struct {
	// Registry owns these metrics; /metrics serves it.
	Registry *prometheus.Registry

	httpDuration        *prometheus.HistogramVec
	operationDuration   *prometheus.HistogramVec
	externalErrors      *prometheus.CounterVec
	cacheHits           *prometheus.CounterVec
	cacheMisses         *prometheus.CounterVec
	tokensUsed          *prometheus.CounterVec
	insightRequests     *prometheus.CounterVec
	transactionsCreated prometheus.Counter
	transactionsStored  prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it, so it can be called more than once in tests.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insight_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "insight_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		insightRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "insight_requests_total",
				Help: "Insight requests by the source that answered them.",
			},
			[]string{"source"},
		),
		transactionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "insight_transactions_created_total",
				Help: "Transactions recorded through the API.",
			},
		),
		transactionsStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "insight_transactions_stored",
				Help: "Transactions currently held in the session store.",
			},
		),
	}
}

// RecordHTTP observes one served HTTP request.
func (m *Metrics) RecordHTTP(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// IncrInsight counts an answered insight request.
func (m *Metrics) IncrInsight(source domain.InsightSource) {
	m.insightRequests.WithLabelValues(string(source)).Inc()
}

// IncrTransactionCreated counts a transaction added through the API.
func (m *Metrics) IncrTransactionCreated() {
	m.transactionsCreated.Inc()
}

// SetTransactionsStored reports the current store size.
func (m *Metrics) SetTransactionsStored(n int) {
	m.transactionsStored.Set(float64(n))
}

// GetInsightSnapshot summarises insight usage for GET /v1/metrics/insight.
// Counters are cumulative since process start.
func (m *Metrics) GetInsightSnapshot() *domain.InsightMetrics {
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")

	model := getCounterValue(m.insightRequests, string(domain.InsightSourceModel))
	cached := getCounterValue(m.insightRequests, string(domain.InsightSourceCache))
	fallbacks := getCounterValue(m.insightRequests, string(domain.InsightSourceNoCredentials)) +
		getCounterValue(m.insightRequests, string(domain.InsightSourceError))
	total := model + cached + fallbacks

	hits := getCounterValue(m.cacheHits, CacheInsight)
	misses := getCounterValue(m.cacheMisses, CacheInsight)

	snap := &domain.InsightMetrics{
		TotalRequests:       int64(total),
		ModelResponses:      int64(model),
		EstimatedCostUsd:    (promptTokens/1000)*promptCostPer1K + (completionTokens/1000)*completionCostPer1K,
		TransactionsCreated: int64(readCounter(m.transactionsCreated)),
		Period:              "all_time",
	}
	if total > 0 {
		snap.FallbackRate = fallbacks / total
	}
	if model > 0 {
		snap.AvgTokensPerRequest = (promptTokens + completionTokens) / model
	}
	if hits+misses > 0 {
		snap.CacheHitRate = hits / (hits + misses)
	}
	return snap
}

// getCounterValue extracts the current value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	return readCounter(cv.WithLabelValues(label))
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
