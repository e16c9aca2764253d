package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/analytics"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InsightService asks the summarisation model about a window of sales.
// Model failures never surface as errors: callers get a fallback insight.
type InsightService struct {
	store     port.TransactionStore
	generator port.InsightGenerator
	cache     port.Cache[domain.InsightResult]
	bulkhead  *resilience.Bulkhead
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       Clock
}

// NewInsightService creates the insight service with all dependencies injected.
func NewInsightService(
	store port.TransactionStore,
	generator port.InsightGenerator,
	cache port.Cache[domain.InsightResult],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
	now Clock,
) *InsightService {
	if now == nil {
		now = time.Now
	}
	return &InsightService{
		store:     store,
		generator: generator,
		cache:     cache,
		bulkhead:  bulkhead,
		metrics:   metrics,
		logger:    logger,
		now:       now,
	}
}

// Configured reports whether the generator has credentials. Generators that
// cannot tell are assumed configured.
func (s *InsightService) Configured() bool {
	if c, ok := s.generator.(interface{ Configured() bool }); ok {
		return c.Configured()
	}
	return true
}

// Generate summarises the transactions in window w. When the window is empty
// the whole collection is summarised instead.
// The only errors returned come from reading the store.
func (s *InsightService) Generate(ctx context.Context, w domain.Window) (*domain.InsightResult, error) {
	ctx, span := tracer.Start(ctx, "InsightService.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("window", string(w)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("insight", time.Since(start))
	}()

	now := s.now()
	key := snapshotKey("insight", w, s.store.Revision(), now)
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit(observability.CacheInsight)
		s.metrics.IncrInsight(domain.InsightSourceCache)
		cached.Source = domain.InsightSourceCache
		cached.LatencyMs = time.Since(start).Milliseconds()
		return &cached, nil
	}
	s.metrics.IncrCacheMiss(observability.CacheInsight)

	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	input := analytics.FilterByWindow(all, w, now)
	if len(input) == 0 {
		input = all
	}
	span.SetAttributes(attribute.Int("insight.transactions", len(input)))

	result := &domain.InsightResult{
		ID:               uuid.NewString(),
		Window:           w,
		TransactionCount: len(input),
		GeneratedAt:      now.Format(time.RFC3339),
	}

	resp, err := s.generate(ctx, w, input)
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		s.logger.Warn("insight generator has no credentials, returning fallback")
		result.Source = domain.InsightSourceNoCredentials
		result.Insight = domain.InsightNoCredentials
	case err != nil:
		s.logger.Error("insight generation failed",
			zap.String("window", string(w)),
			zap.Int("transactions", len(input)),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("gemini")
		result.Source = domain.InsightSourceError
		result.Insight = domain.InsightUnavailable
	default:
		s.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
		tokens := resp.TokensUsed
		result.Source = domain.InsightSourceModel
		result.Insight = resp.Insight
		result.TokensUsed = &tokens
	}
	result.LatencyMs = time.Since(start).Milliseconds()

	if result.Source == domain.InsightSourceModel {
		s.cache.Set(key, *result)
	}
	s.metrics.IncrInsight(result.Source)
	return result, nil
}

func (s *InsightService) generate(ctx context.Context, w domain.Window, txs []domain.Transaction) (*domain.InsightResponse, error) {
	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "insight.bulkhead"}
	}
	defer s.bulkhead.Release()

	start := time.Now()
	resp, err := s.generator.Generate(ctx, &domain.InsightRequest{Window: w, Transactions: txs})
	s.metrics.RecordRequestDuration("gemini", time.Since(start))
	return resp, err
}
