package analytics

import (
	"sort"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultTopProducts is the size of the dashboard's product ranking.
const DefaultTopProducts = 5

// ComputeSummary computes the headline statistics for txs.
// An empty set yields zeros and domain.NoTopProduct.
func ComputeSummary(txs []domain.Transaction) domain.SummaryStats {
	revenue, profit := decimal.Zero, decimal.Zero
	byProduct := newOrdered[decimal.Decimal](len(txs))

	for _, t := range txs {
		r := revenueOf(t)
		p := r.Sub(costOf(t))
		revenue = revenue.Add(r)
		profit = profit.Add(p)

		acc := byProduct.at(t.ProductName)
		*acc = acc.Add(p)
	}

	stats := domain.SummaryStats{
		TotalRevenue: revenue.InexactFloat64(),
		TotalProfit:  profit.InexactFloat64(),
		TotalOrders:  len(txs),
		TopProduct:   domain.NoTopProduct,
	}
	if len(txs) > 0 {
		stats.AverageOrderValue = revenue.Div(decimal.NewFromInt(int64(len(txs)))).InexactFloat64()
	}

	// First strict maximum wins, so equal profits keep first appearance.
	best := -1
	for i, v := range byProduct.vals {
		if best < 0 || v.GreaterThan(byProduct.vals[best]) {
			best = i
		}
	}
	if best >= 0 && byProduct.keys[best] != "" {
		stats.TopProduct = byProduct.keys[best]
	}
	return stats
}

type dayTotals struct {
	revenue decimal.Decimal
	profit  decimal.Decimal
}

// ComputeTrend buckets txs by exact date and returns one point per date,
// ascending. Dates without transactions are omitted.
func ComputeTrend(txs []domain.Transaction) []domain.TrendPoint {
	byDate := newOrdered[dayTotals](len(txs))
	for _, t := range txs {
		r := revenueOf(t)
		acc := byDate.at(t.Date)
		acc.revenue = acc.revenue.Add(r)
		acc.profit = acc.profit.Add(r.Sub(costOf(t)))
	}

	out := make([]domain.TrendPoint, 0, byDate.len())
	for i, date := range byDate.keys {
		out = append(out, domain.TrendPoint{
			Date:    date,
			Revenue: byDate.vals[i].revenue.InexactFloat64(),
			Profit:  byDate.vals[i].profit.InexactFloat64(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ComputePlatformBreakdown sums revenue per literal platform value and sorts
// descending by revenue. Ties keep first appearance.
func ComputePlatformBreakdown(txs []domain.Transaction) []domain.PlatformRevenue {
	byPlatform := newOrdered[decimal.Decimal](len(txs))
	for _, t := range txs {
		acc := byPlatform.at(string(t.Platform))
		*acc = acc.Add(revenueOf(t))
	}

	order := rankDesc(byPlatform.vals)
	out := make([]domain.PlatformRevenue, 0, len(order))
	for _, i := range order {
		out = append(out, domain.PlatformRevenue{
			Platform: domain.Platform(byPlatform.keys[i]),
			Revenue:  byPlatform.vals[i].InexactFloat64(),
		})
	}
	return out
}

// ComputeTopProducts sums profit per product, sorts descending and keeps at
// most n entries. Ties keep first appearance. n <= 0 yields an empty ranking.
func ComputeTopProducts(txs []domain.Transaction, n int) []domain.ProductProfit {
	if n <= 0 {
		return []domain.ProductProfit{}
	}

	byProduct := newOrdered[decimal.Decimal](len(txs))
	for _, t := range txs {
		acc := byProduct.at(t.ProductName)
		*acc = acc.Add(profitOf(t))
	}

	order := rankDesc(byProduct.vals)
	if len(order) > n {
		order = order[:n]
	}
	out := make([]domain.ProductProfit, 0, len(order))
	for _, i := range order {
		out = append(out, domain.ProductProfit{
			Product: byProduct.keys[i],
			Profit:  byProduct.vals[i].InexactFloat64(),
		})
	}
	return out
}

// BuildDashboard filters txs by w and computes every aggregate on the result.
func BuildDashboard(txs []domain.Transaction, w domain.Window, now time.Time) domain.Dashboard {
	filtered := FilterByWindow(txs, w, now)
	return domain.Dashboard{
		Window:      w,
		GeneratedAt: now.Format(time.RFC3339),
		Summary:     ComputeSummary(filtered),
		Trend:       ComputeTrend(filtered),
		Platforms:   ComputePlatformBreakdown(filtered),
		TopProducts: ComputeTopProducts(filtered, DefaultTopProducts),
	}
}

// rankDesc returns the indexes of vals ordered by descending value, stable
// with respect to the original (first-insertion) order.
func rankDesc(vals []decimal.Decimal) []int {
	idx := make([]int, len(vals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return vals[idx[a]].GreaterThan(vals[idx[b]])
	})
	return idx
}
