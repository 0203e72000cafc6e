package subscription

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Store for tests and single-node setups.
// All values are copied on the way in and out so callers can't mutate
// shared state behind the lock.
type memoryStore struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account
	history  map[uuid.UUID][]UpgradeRecord
}

// NewMemoryStore returns an empty in-memory account store.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts: make(map[uuid.UUID]Account),
		history:  make(map[uuid.UUID][]UpgradeRecord),
	}
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := a
	return &cp, nil
}

func (s *memoryStore) Save(ctx context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = *a
	return nil
}

func (s *memoryStore) AppendUpgrade(ctx context.Context, rec *UpgradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[rec.AccountID] = append(s.history[rec.AccountID], *rec)
	return nil
}

func (s *memoryStore) UpgradeHistory(ctx context.Context, accountID uuid.UUID) ([]UpgradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.history[accountID]), nil
}

func (s *memoryStore) ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Account
	for _, a := range s.accounts {
		if a.SubscriptionEndsAt != nil && asOf.After(*a.SubscriptionEndsAt) && a.Status != StatusExpired {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryStore) ListUpdatedSince(ctx context.Context, since time.Time) ([]*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Account
	for _, a := range s.accounts {
		if a.UpdatedAt.After(since) {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}
