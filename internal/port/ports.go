// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"
)

// TransactionStore holds the session's sales transactions.
// It is append-only: records are never edited or removed.
type TransactionStore interface {
	// List returns every transaction, most recently added first.
	List(ctx context.Context) ([]domain.Transaction, error)
	// Add assigns an ID to t, prepends it and returns the stored record.
	Add(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	// Revision increases every time the collection changes.
	Revision() uint64
}

// InsightGenerator produces a narrative summary of a transaction set.
type InsightGenerator interface {
	Generate(ctx context.Context, req *domain.InsightRequest) (*domain.InsightResponse, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
