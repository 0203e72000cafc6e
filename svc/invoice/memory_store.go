package invoice

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store for tests and single-node setups.
type memoryStore struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]Invoice
}

// NewMemoryStore returns an empty in-memory invoice store.
func NewMemoryStore() Store {
	return &memoryStore{invoices: make(map[uuid.UUID]Invoice)}
}

func (s *memoryStore) Get(ctx context.Context, accountID, id uuid.UUID) (*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoices[id]
	if !ok || inv.AccountID != accountID {
		return nil, ErrInvoiceNotFound
	}
	return cloneInvoice(inv), nil
}

func (s *memoryStore) Save(ctx context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *inv
	cp.Items = slices.Clone(inv.Items)
	s.invoices[inv.ID] = cp
	return nil
}

func (s *memoryStore) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Invoice
	for _, inv := range s.invoices {
		if inv.Status == StatusSent && inv.DueAt != nil && asOf.After(*inv.DueAt) {
			out = append(out, cloneInvoice(inv))
		}
	}
	return out, nil
}

func (s *memoryStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, inv := range s.invoices {
		if inv.AccountID == accountID && !inv.CreatedAt.Before(start) && inv.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func cloneInvoice(inv Invoice) *Invoice {
	cp := inv
	cp.Items = slices.Clone(inv.Items)
	return &cp
}
