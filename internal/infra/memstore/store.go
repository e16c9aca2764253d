// Package memstore is the in-memory, append-only transaction store.
// Everything lives for the lifetime of the process.
package memstore

import (
	"context"
	"sync"

	"github.com/boddenberg/merchant-insight-bfa-go/internal/domain"

	"github.com/google/uuid"
)

// Store is a thread-safe TransactionStore.
type Store struct {
	mu       sync.RWMutex
	items    []domain.Transaction // oldest first; List reverses
	revision uint64
	newID    func() string
}

// New creates an empty store.
func New() *Store {
	return &Store{newID: func() string { return uuid.New().String() }}
}

// List returns a copy of all transactions, most recently added first.
func (s *Store) List(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transaction, len(s.items))
	for i, t := range s.items {
		out[len(s.items)-1-i] = t
	}
	return out, nil
}

// Add stores t under a fresh ID. Any ID on the input is ignored.
func (s *Store) Add(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.newID()
	s.items = append(s.items, t)
	s.revision++
	return t, nil
}

// Revision returns the change counter.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
