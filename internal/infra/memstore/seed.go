package memstore

import (
	"context"
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
)

type seedRow struct {
	daysAgo  int
	product  string
	category string
	price    float64
	cost     float64
	qty      int
	platform domain.Platform
}

// Demo data, listed newest first as the dashboard shows it.
var seedRows = []seedRow{
	// today
	{0, "เสื้อยืด Oversize", "เสื้อผ้า", 250, 120, 2, domain.PlatformTikTok},
	{0, "ลิปสติก Matte", "ความงาม", 199, 80, 1, domain.PlatformShopee},
	{0, "น้ำพริกกากหมู", "อาหาร", 89, 50, 10, domain.PlatformFacebook},
	// this week
	{1, "เซรั่มหน้าใส", "ความงาม", 450, 200, 3, domain.PlatformLine},
	{2, "กางเกงยีนส์ขาสั้น", "เสื้อผ้า", 390, 180, 1, domain.PlatformLazada},
	{3, "ขนมเปี๊ยะลาวา", "อาหาร", 120, 70, 5, domain.PlatformFacebook},
	{4, "เสื้อยืด Oversize", "เสื้อผ้า", 250, 120, 1, domain.PlatformShopee},
	// older
	{10, "เดรสเกาหลี", "เสื้อผ้า", 590, 300, 1, domain.PlatformTikTok},
	{15, "ครีมกันแดด", "ความงาม", 290, 150, 2, domain.PlatformLine},
	{20, "เสื้อยืด Oversize", "เสื้อผ้า", 250, 120, 5, domain.PlatformTikTok},
	{25, "หูฟังบลูทูธ", "ของใช้", 890, 450, 2, domain.PlatformShopee},
	{32, "กระเป๋าผ้า", "เสื้อผ้า", 150, 60, 5, domain.PlatformLazada},
}

// SeedTransactions returns the demo transactions dated relative to now,
// newest first.
func SeedTransactions(now time.Time) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(seedRows))
	for _, r := range seedRows {
		out = append(out, domain.Transaction{
			Date:        now.AddDate(0, 0, -r.daysAgo).Format(domain.DateLayout),
			ProductName: r.product,
			Category:    r.category,
			Price:       r.price,
			Cost:        r.cost,
			Quantity:    r.qty,
			Platform:    r.platform,
			Status:      domain.StatusCompleted,
		})
	}
	return out
}

// NewSeeded creates a store pre-loaded with the demo transactions so that
// List returns them in SeedTransactions order.
func NewSeeded(now time.Time) *Store {
	s := New()
	rows := SeedTransactions(now)
	for i := len(rows) - 1; i >= 0; i-- {
		// Cannot fail: background context, no cancellation.
		_, _ = s.Add(context.Background(), rows[i])
	}
	return s
}
