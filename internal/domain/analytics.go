package domain

import "fmt"

// ============================================================
// Sales Analytics
// ============================================================

// Window is a relative time range used to filter transactions.
type Window string

const (
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow maps a query value to a Window. Empty means WindowAll.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return WindowAll, nil
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return w, nil
	}
	return "", &ErrValidation{Field: "window", Message: fmt.Sprintf("unknown window %q (today, week, month, all)", s)}
}

// NoTopProduct is reported as SummaryStats.TopProduct for an empty set.
const NoTopProduct = "-"

// SummaryStats are the headline numbers for a set of transactions.
type SummaryStats struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalProfit       float64 `json:"totalProfit"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	TopProduct        string  `json:"topProduct"`
}

// TrendPoint is one daily bucket of the revenue/profit trend.
type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// PlatformRevenue is revenue summed per platform.
type PlatformRevenue struct {
	Platform Platform `json:"platform"`
	Revenue  float64  `json:"revenue"`
}

// ProductProfit is profit summed per product.
type ProductProfit struct {
	Product string  `json:"product"`
	Profit  float64 `json:"profit"`
}

// Dashboard bundles every aggregate for one window.
type Dashboard struct {
	Window      Window            `json:"window"`
	GeneratedAt string            `json:"generatedAt"`
	Summary     SummaryStats      `json:"summary"`
	Trend       []TrendPoint      `json:"trend"`
	Platforms   []PlatformRevenue `json:"platforms"`
	TopProducts []ProductProfit   `json:"topProducts"`
}

// PlatformSlice is a platform breakdown entry enriched for charts.
type PlatformSlice struct {
	PlatformRevenue
	Label string `json:"label"`
	Color string `json:"color"`
}
