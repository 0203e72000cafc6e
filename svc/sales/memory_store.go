package sales

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store for tests and single-node setups.
type memoryStore struct {
	mu    sync.RWMutex
	sales map[uuid.UUID]Sale
}

// NewMemoryStore returns an empty in-memory sale store.
func NewMemoryStore() Store {
	return &memoryStore{sales: make(map[uuid.UUID]Sale)}
}

func (s *memoryStore) Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok || sale.AccountID != accountID {
		return nil, ErrSaleNotFound
	}
	cp := sale
	cp.Items = slices.Clone(sale.Items)
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, sale *Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sale
	cp.Items = slices.Clone(sale.Items)
	s.sales[sale.ID] = cp
	return nil
}

func (s *memoryStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, sale := range s.sales {
		if sale.AccountID == accountID && !sale.CreatedAt.Before(start) && sale.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}
