package usage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// Record is one durable usage counter for (account, feature, billing period).
// Counters only ever grow within a period; the sole exceptions are the
// explicit upgrade reset and a consistency repair. A new period gets a fresh
// record, the old one is kept for audit.
type Record struct {
	AccountID   uuid.UUID
	Feature     plan.Feature
	PeriodStart time.Time
	PeriodEnd   time.Time
	Count       int64
	UpdatedAt   time.Time
}

// FeatureUsage is a read-model row for dashboards: current count against the
// plan limit for the active billing window. The limit comes from the plan at
// read time, never from the stored record.
type FeatureUsage struct {
	Feature     plan.Feature
	Count       int64
	Limit       int64
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Discrepancy reports a ledger counter that disagrees with the authoritative
// recount of domain rows in the same window.
type Discrepancy struct {
	Feature     plan.Feature
	LedgerCount int64
	ActualCount int64
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// Recounter returns the authoritative number of domain records an account
// created for a feature within a window. Implementations typically run a
// COUNT(*) against the feature's own table.
type Recounter func(ctx context.Context, accountID uuid.UUID, periodStart, periodEnd time.Time) (int64, error)

// AccountInfo is what the ledger needs to know about an account: which plan
// sets the limits and which instant anchors the billing windows.
type AccountInfo struct {
	Plan         plan.ID
	PeriodAnchor time.Time
}

// AccountInfoResolver looks up AccountInfo for an account. Kept as a func
// type so the ledger stays decoupled from account persistence.
type AccountInfoResolver func(ctx context.Context, accountID uuid.UUID) (AccountInfo, error)
