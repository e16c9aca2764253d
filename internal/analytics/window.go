// Package analytics is the sales aggregation engine behind the dashboard.
// Every function here is pure: it reads the transactions it is given,
// never mutates them, and is total over well-formed input.
package analytics

import (
	"time"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
)

// FilterByWindow returns the transactions of txs whose date falls inside w,
// evaluated against the calendar day of now (in now's location).
// The input order is preserved and the result never aliases txs.
func FilterByWindow(txs []domain.Transaction, w domain.Window, now time.Time) []domain.Transaction {
	start, end, ok := WindowBounds(w, now)
	out := make([]domain.Transaction, 0, len(txs))
	if !ok {
		return append(out, txs...)
	}

	for _, t := range txs {
		d, err := time.ParseInLocation(domain.DateLayout, t.Date, now.Location())
		if err != nil {
			// Undated rows cannot be placed in a bounded window; they only show under "all".
			continue
		}
		if !d.Before(start) && d.Before(end) {
			out = append(out, t)
		}
	}
	return out
}

// WindowBounds returns the half-open range [start, end) of calendar days that
// w covers relative to now. ok is false for WindowAll (and anything unknown),
// which means no filtering.
//
// week and month are rolling windows anchored on today's midnight (7 and 30
// days back); the upper bound is the end of today so future-dated rows are
// excluded.
func WindowBounds(w domain.Window, now time.Time) (start, end time.Time, ok bool) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end = dayStart.AddDate(0, 0, 1)

	switch w {
	case domain.WindowToday:
		return dayStart, end, true
	case domain.WindowWeek:
		return dayStart.AddDate(0, 0, -7), end, true
	case domain.WindowMonth:
		return dayStart.AddDate(0, 0, -30), end, true
	}
	return time.Time{}, time.Time{}, false
}
