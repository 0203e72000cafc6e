package revenue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore is an in-memory Recorder for tests and single-node setups.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]Entry
}

// NewMemoryStore returns an empty in-memory revenue recorder.
func NewMemoryStore() Recorder {
	return &memoryStore{entries: make(map[uuid.UUID][]Entry)}
}

func (s *memoryStore) Record(ctx context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.AccountID] = append(s.entries[e.AccountID], *e)
	return nil
}

func (s *memoryStore) ListByAccount(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries[accountID] {
		if !e.OccurredAt.Before(start) && e.OccurredAt.Before(end) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.After(out[j].OccurredAt) })
	return out, nil
}
