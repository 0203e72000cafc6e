package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// Store persists usage counters. Implementations must make IncrementIf atomic
// with respect to concurrent callers for the same (account, feature, period):
// two racers for the last unit must see exactly one true and one false.
type Store interface {
	// Get retrieves the counter for a window.
	// Returns ErrRecordNotFound when no increment happened yet.
	Get(ctx context.Context, accountID uuid.UUID, f plan.Feature, periodStart time.Time) (*Record, error)

	// IncrementIf lazily creates the window's record and increments it by one
	// iff the current count is below limit. A negative limit means unlimited.
	// Returns false without mutating state when the counter is at the limit.
	// Transient conflicts surface as ErrWriteConflict and are retried by the
	// ledger, not the store.
	IncrementIf(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, limit int64, now time.Time) (bool, error)

	// SetCount force-sets a window's counter, creating the record if needed.
	// Used only by upgrade resets and consistency repair.
	SetCount(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, count int64, now time.Time) error
}
