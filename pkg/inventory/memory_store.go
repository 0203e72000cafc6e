package inventory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store. One mutex covers check and decrement,
// so Commit is atomic across all items.
type memoryStore struct {
	mu       sync.RWMutex
	products map[uuid.UUID]Product
}

// NewMemoryStore returns an empty in-memory product store.
func NewMemoryStore() Store {
	return &memoryStore{products: make(map[uuid.UUID]Product)}
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := p
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = *p
	return nil
}

func (s *memoryStore) Commit(ctx context.Context, accountID uuid.UUID, items []Item) error {
	if err := validateItems(items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: verify every item before touching any quantity.
	var shortfalls []Shortfall
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok || p.AccountID != accountID {
			return ErrProductNotFound
		}
		if p.QuantityOnHand < it.Quantity {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: p.QuantityOnHand,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &InsufficientStockError{Shortfalls: shortfalls}
	}

	for _, it := range items {
		p := s.products[it.ProductID]
		p.QuantityOnHand -= it.Quantity
		s.products[it.ProductID] = p
	}
	return nil
}

func (s *memoryStore) Release(ctx context.Context, accountID uuid.UUID, items []Item) error {
	if err := validateItems(items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok || p.AccountID != accountID {
			return ErrProductNotFound
		}
		p.QuantityOnHand += it.Quantity
		s.products[it.ProductID] = p
	}
	return nil
}

func (s *memoryStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, p := range s.products {
		if p.AccountID == accountID && !p.CreatedAt.Before(start) && p.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func validateItems(items []Item) error {
	for _, it := range items {
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}
