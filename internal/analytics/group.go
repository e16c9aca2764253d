package analytics

import (
	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// ordered accumulates values by key, remembering first-insertion order.
// Rankings built from it break ties by first appearance in the input.
type ordered[V any] struct {
	index map[string]int
	keys  []string
	vals  []V
}

func newOrdered[V any](capacity int) *ordered[V] {
	return &ordered[V]{
		index: make(map[string]int, capacity),
		keys:  make([]string, 0, capacity),
		vals:  make([]V, 0, capacity),
	}
}

// at returns the accumulator for key, inserting a zero value on first use.
// The pointer is only valid until the next call to at.
func (o *ordered[V]) at(key string) *V {
	i, ok := o.index[key]
	if !ok {
		var zero V
		i = len(o.keys)
		o.index[key] = i
		o.keys = append(o.keys, key)
		o.vals = append(o.vals, zero)
	}
	return &o.vals[i]
}

func (o *ordered[V]) len() int { return len(o.keys) }

// Money math is done in decimal so that sums are exact and equal cumulative
// profits compare equal.

func revenueOf(t domain.Transaction) decimal.Decimal {
	return decimal.NewFromFloat(t.Price).Mul(decimal.NewFromInt(int64(t.Quantity)))
}

func costOf(t domain.Transaction) decimal.Decimal {
	return decimal.NewFromFloat(t.Cost).Mul(decimal.NewFromInt(int64(t.Quantity)))
}

func profitOf(t domain.Transaction) decimal.Decimal {
	return revenueOf(t).Sub(costOf(t))
}
