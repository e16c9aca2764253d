package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/analytics"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/infra/observability"
	"github.com/boddenberg/merchant-insight-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service")

// DefaultCategory is assigned when a new transaction has no category.
const DefaultCategory = "ทั่วไป"

// Clock returns the current time. The location of the returned value decides
// which calendar day "today" is.
type Clock func() time.Time

// DashboardService records transactions and computes dashboard views.
type DashboardService struct {
	store   port.TransactionStore
	cache   port.Cache[domain.Dashboard]
	metrics *observability.Metrics
	logger  *zap.Logger
	now     Clock
}

// NewDashboardService creates the dashboard service with all dependencies injected.
func NewDashboardService(
	store port.TransactionStore,
	cache port.Cache[domain.Dashboard],
	metrics *observability.Metrics,
	logger *zap.Logger,
	now Clock,
) *DashboardService {
	if now == nil {
		now = time.Now
	}
	return &DashboardService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     now,
	}
}

// ListTransactions returns the transactions whose product or category
// contains query (case-insensitive), newest date first.
// Rows sharing a date keep their insertion order, most recent first.
func (s *DashboardService) ListTransactions(ctx context.Context, query string) ([]domain.TransactionView, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.ListTransactions")
	defer span.End()

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	matched := make([]domain.Transaction, 0, len(all))
	for _, t := range all {
		if q == "" ||
			strings.Contains(strings.ToLower(t.ProductName), q) ||
			strings.Contains(strings.ToLower(t.Category), q) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date > matched[j].Date
	})

	views := make([]domain.TransactionView, len(matched))
	for i, t := range matched {
		views[i] = domain.NewTransactionView(t)
	}
	span.SetAttributes(attribute.Int("transactions.matched", len(views)))
	return views, nil
}

// AddTransaction validates req, fills defaults and stores the transaction.
func (s *DashboardService) AddTransaction(ctx context.Context, req *domain.NewTransactionRequest) (*domain.TransactionView, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.AddTransaction")
	defer span.End()

	t, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.Add(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("store transaction: %w", err)
	}
	s.metrics.IncrTransactionCreated()
	s.logger.Info("transaction recorded",
		zap.String("id", stored.ID),
		zap.String("date", stored.Date),
		zap.String("platform", string(stored.Platform)),
	)

	view := domain.NewTransactionView(stored)
	return &view, nil
}

func (s *DashboardService) validate(req *domain.NewTransactionRequest) (domain.Transaction, error) {
	if req == nil {
		return domain.Transaction{}, &domain.ErrValidation{Field: "body", Message: "request body is required"}
	}

	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		return domain.Transaction{}, &domain.ErrValidation{Field: "productName", Message: "product name is required"}
	}

	if req.Price == nil {
		return domain.Transaction{}, &domain.ErrValidation{Field: "price", Message: "price is required"}
	}
	if !finite(*req.Price) || *req.Price <= 0 {
		return domain.Transaction{}, &domain.ErrValidation{Field: "price", Message: "price must be a positive number"}
	}

	if req.Cost == nil {
		return domain.Transaction{}, &domain.ErrValidation{Field: "cost", Message: "cost is required"}
	}
	if !finite(*req.Cost) || *req.Cost < 0 {
		return domain.Transaction{}, &domain.ErrValidation{Field: "cost", Message: "cost must be zero or a positive number"}
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return domain.Transaction{}, &domain.ErrValidation{Field: "quantity", Message: "quantity must be at least 1"}
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = s.now().Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.Transaction{}, &domain.ErrValidation{Field: "date", Message: "date must be YYYY-MM-DD"}
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = DefaultCategory
	}

	platform := domain.Platform(strings.TrimSpace(string(req.Platform)))
	if platform == "" {
		platform = domain.PlatformTikTok
	}

	status := req.Status
	if status == "" {
		status = domain.StatusCompleted
	}
	if !status.Valid() {
		return domain.Transaction{}, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	return domain.Transaction{
		Date:        date,
		ProductName: name,
		Category:    category,
		Price:       *req.Price,
		Cost:        *req.Cost,
		Quantity:    qty,
		Platform:    platform,
		Status:      status,
	}, nil
}

// Dashboard returns every aggregate for window w.
// Results are memoised per store revision and calendar day.
func (s *DashboardService) Dashboard(ctx context.Context, w domain.Window) (*domain.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("window", string(w)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("dashboard", time.Since(start))
	}()

	now := s.now()
	key := snapshotKey("dashboard", w, s.store.Revision(), now)
	if d, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit(observability.CacheDashboard)
		return &d, nil
	}
	s.metrics.IncrCacheMiss(observability.CacheDashboard)

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	d := analytics.BuildDashboard(all, w, now)
	s.cache.Set(key, d)
	return &d, nil
}

// Summary returns the headline statistics for window w.
func (s *DashboardService) Summary(ctx context.Context, w domain.Window) (*domain.SummaryStats, error) {
	d, err := s.Dashboard(ctx, w)
	if err != nil {
		return nil, err
	}
	return &d.Summary, nil
}

// Trend returns the daily revenue/profit series for window w.
func (s *DashboardService) Trend(ctx context.Context, w domain.Window) ([]domain.TrendPoint, error) {
	d, err := s.Dashboard(ctx, w)
	if err != nil {
		return nil, err
	}
	return d.Trend, nil
}

// Platforms returns the revenue breakdown for window w with chart labels and colours.
func (s *DashboardService) Platforms(ctx context.Context, w domain.Window) ([]domain.PlatformSlice, error) {
	d, err := s.Dashboard(ctx, w)
	if err != nil {
		return nil, err
	}
	slices := make([]domain.PlatformSlice, len(d.Platforms))
	for i, p := range d.Platforms {
		slices[i] = domain.PlatformSlice{
			PlatformRevenue: p,
			Label:           p.Platform.Label(),
			Color:           p.Platform.Color(),
		}
	}
	return slices, nil
}

// TopProducts returns the limit most profitable products in window w.
func (s *DashboardService) TopProducts(ctx context.Context, w domain.Window, limit int) ([]domain.ProductProfit, error) {
	if limit == analytics.DefaultTopProducts {
		d, err := s.Dashboard(ctx, w)
		if err != nil {
			return nil, err
		}
		return d.TopProducts, nil
	}

	ctx, span := tracer.Start(ctx, "DashboardService.TopProducts")
	defer span.End()
	span.SetAttributes(attribute.String("window", string(w)), attribute.Int("limit", limit))

	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeTopProducts(analytics.FilterByWindow(all, w, s.now()), limit), nil
}

// Count returns how many transactions are stored.
func (s *DashboardService) Count(ctx context.Context) (int, error) {
	all, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (s *DashboardService) load(ctx context.Context) ([]domain.Transaction, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	s.metrics.SetTransactionsStored(len(all))
	return all, nil
}

// snapshotKey identifies a computation over one store revision on one
// calendar day. Relative windows shift at midnight even without new data.
func snapshotKey(kind string, w domain.Window, revision uint64, now time.Time) string {
	return fmt.Sprintf("%s:%s:%d:%s", kind, w, revision, now.Format(domain.DateLayout))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
