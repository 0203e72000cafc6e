package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// Account holds the per-tenant subscription state. The stored Status field is
// a hint written only by the reconciliation sweep; business logic must go
// through Resolve instead of branching on it.
type Account struct {
	ID                    uuid.UUID
	Plan                  plan.ID
	Status                Status     // optimization hint, never a source of truth
	TrialEndsAt           *time.Time // set only while the trial is (or was) running
	SubscriptionStartedAt *time.Time
	SubscriptionEndsAt    *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// CurrentPlan returns the canonical plan ID, normalizing legacy aliases
// persisted by older records.
func (a *Account) CurrentPlan() plan.ID {
	return plan.Normalize(a.Plan)
}

// PeriodAnchor returns the timestamp usage-counting windows are derived from:
// the subscription start when one exists, account creation otherwise.
func (a *Account) PeriodAnchor() time.Time {
	if a.SubscriptionStartedAt != nil {
		return *a.SubscriptionStartedAt
	}
	return a.CreatedAt
}

// NewTrialAccount creates an account starting on the given plan's trial.
// Plans without a trial produce a plain free-tier account on that plan.
func NewTrialAccount(id uuid.UUID, p plan.Plan, now time.Time) *Account {
	now = now.UTC()
	a := &Account{
		ID:        id,
		Plan:      p.ID,
		Status:    StatusFree,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.TrialDays > 0 {
		ends := p.TrialEndsAt(now)
		a.Status = StatusTrial
		a.TrialEndsAt = &ends
	}
	return a
}

// UpgradeRecord is one entry of the append-only plan-change audit trail.
// Records are never mutated after append.
type UpgradeRecord struct {
	ID               uuid.UUID
	AccountID        uuid.UUID
	FromPlan         plan.ID
	ToPlan           plan.ID
	RemainingValue   int64 // unused value carried over, smallest currency unit
	BonusDaysGranted int
	CreatedAt        time.Time
}
