// Package domain defines the core business entities for Merchant Insight.
// These models are independent of external services and represent the
// canonical data structures used throughout the BFA.
package domain

// DateLayout is the calendar-date format used for Transaction.Date.
// Lexicographic order on this layout is chronological order.
const DateLayout = "2006-01-02"

// ============================================================
// Sales
// ============================================================

// Platform is the sales channel a transaction came through.
type Platform string

const (
	PlatformShopee   Platform = "Shopee"
	PlatformLazada   Platform = "Lazada"
	PlatformTikTok   Platform = "TikTok"
	PlatformFacebook Platform = "Facebook"
	PlatformLine     Platform = "Line"
)

// PlatformOther is the presentation label for any unrecognised platform.
const PlatformOther = "Other"

var platformColors = map[Platform]string{
	PlatformShopee:   "#EE4D2D",
	PlatformLazada:   "#0f4c81",
	PlatformTikTok:   "#000000",
	PlatformLine:     "#06C755",
	PlatformFacebook: "#1877F2",
}

const otherPlatformColor = "#9CA3AF"

// Known reports whether p is one of the supported platforms.
func (p Platform) Known() bool {
	_, ok := platformColors[p]
	return ok
}

// Label returns the display name, "Other" for unknown platforms.
func (p Platform) Label() string {
	if p.Known() {
		return string(p)
	}
	return PlatformOther
}

// Color returns the chart colour for the platform.
func (p Platform) Color() string {
	if c, ok := platformColors[p]; ok {
		return c
	}
	return otherPlatformColor
}

// Status is the order status. It is recorded but not used by aggregation.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
	StatusCancelled Status = "Cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// Transaction is one recorded sale. Price and Cost are per unit.
type Transaction struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"` // YYYY-MM-DD
	ProductName string   `json:"productName"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Cost        float64  `json:"cost"`
	Quantity    int      `json:"quantity"`
	Platform    Platform `json:"platform"`
	Status      Status   `json:"status"`
}

// TotalRevenue is price * quantity.
func (t Transaction) TotalRevenue() float64 {
	return t.Price * float64(t.Quantity)
}

// TotalCost is cost * quantity.
func (t Transaction) TotalCost() float64 {
	return t.Cost * float64(t.Quantity)
}

// Profit is revenue minus cost. It can be negative.
func (t Transaction) Profit() float64 {
	return t.TotalRevenue() - t.TotalCost()
}

// NewTransactionRequest is the body of POST /v1/transactions.
// Pointer fields distinguish "missing" from zero.
type NewTransactionRequest struct {
	Date        string   `json:"date,omitempty"`
	ProductName string   `json:"productName"`
	Category    string   `json:"category,omitempty"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Quantity    *int     `json:"quantity"`
	Platform    Platform `json:"platform,omitempty"`
	Status      Status   `json:"status,omitempty"`
}

// TransactionView is a transaction with its derived totals, as listed in the UI.
type TransactionView struct {
	Transaction
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalCost     float64 `json:"totalCost"`
	Profit        float64 `json:"profit"`
	PlatformLabel string  `json:"platformLabel"`
}

// NewTransactionView attaches derived totals to t.
func NewTransactionView(t Transaction) TransactionView {
	return TransactionView{
		Transaction:   t,
		TotalRevenue:  t.TotalRevenue(),
		TotalCost:     t.TotalCost(),
		Profit:        t.Profit(),
		PlatformLabel: t.Platform.Label(),
	}
}
