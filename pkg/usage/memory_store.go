package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

type recordKey struct {
	accountID   uuid.UUID
	feature     plan.Feature
	periodStart int64 // unix seconds, UTC
}

// memoryStore is an in-memory Store. A single mutex serializes IncrementIf,
// which trivially satisfies the atomicity contract.
type memoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]Record
}

// NewMemoryStore returns an empty in-memory usage store.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[recordKey]Record)}
}

func key(accountID uuid.UUID, f plan.Feature, periodStart time.Time) recordKey {
	return recordKey{accountID: accountID, feature: f, periodStart: periodStart.UTC().Unix()}
}

func (s *memoryStore) Get(ctx context.Context, accountID uuid.UUID, f plan.Feature, periodStart time.Time) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key(accountID, f, periodStart)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := rec
	return &cp, nil
}

func (s *memoryStore) IncrementIf(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, limit int64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(accountID, f, period.Start)
	rec, ok := s.records[k]
	if !ok {
		rec = Record{
			AccountID:   accountID,
			Feature:     f,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
		}
	}

	if limit >= 0 && rec.Count >= limit {
		return false, nil
	}

	rec.Count++
	rec.UpdatedAt = now
	s.records[k] = rec
	return true, nil
}

func (s *memoryStore) SetCount(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, count int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(accountID, f, period.Start)
	rec, ok := s.records[k]
	if !ok {
		rec = Record{
			AccountID:   accountID,
			Feature:     f,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
		}
	}
	rec.Count = count
	rec.UpdatedAt = now
	s.records[k] = rec
	return nil
}
