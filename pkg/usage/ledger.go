package usage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// Ledger is the single entry point for usage-limit enforcement. Every
// feature-creation path calls CheckAndIncrement before writing the domain
// row; nothing else is allowed to bump the counters.
type Ledger struct {
	store          Store
	catalog        plan.Catalog
	resolveAccount AccountInfoResolver
	recounters     map[plan.Feature]Recounter
	now            func() time.Time
	log            *slog.Logger
	retryAttempts  int
	retryBackoff   time.Duration
}

// LedgerOption configures optional ledger settings.
type LedgerOption func(*Ledger)

// WithClock overrides the time source, mainly for tests with fixed times.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithLogger sets the logger used for discrepancy and conflict reporting.
func WithLogger(log *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		if log != nil {
			l.log = log
		}
	}
}

// WithRecounter registers the authoritative recount source for a feature.
// Features without a recounter are skipped by the consistency sweep.
func WithRecounter(f plan.Feature, fn Recounter) LedgerOption {
	return func(l *Ledger) {
		if fn != nil {
			l.recounters[f] = fn
		}
	}
}

// WithRetry tunes the bounded retry loop around conflicting increments.
func WithRetry(attempts int, backoff time.Duration) LedgerOption {
	return func(l *Ledger) {
		if attempts > 0 {
			l.retryAttempts = attempts
		}
		if backoff > 0 {
			l.retryBackoff = backoff
		}
	}
}

// NewLedger creates a usage ledger.
// Panics if store, catalog or resolver are nil to fail fast during wiring.
func NewLedger(store Store, catalog plan.Catalog, resolver AccountInfoResolver, opts ...LedgerOption) *Ledger {
	if store == nil {
		panic("usage: Store is required")
	}
	if catalog == nil {
		panic("usage: plan catalog is required")
	}
	if resolver == nil {
		panic("usage: AccountInfoResolver is required")
	}

	l := &Ledger{
		store:          store,
		catalog:        catalog,
		resolveAccount: resolver,
		recounters:     make(map[plan.Feature]Recounter),
		now:            func() time.Time { return time.Now().UTC() },
		log:            slog.Default(),
		retryAttempts:  3,
		retryBackoff:   25 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// window resolves the account's plan and the billing window containing now.
func (l *Ledger) window(ctx context.Context, accountID uuid.UUID) (plan.Plan, plan.Period, error) {
	info, err := l.resolveAccount(ctx, accountID)
	if err != nil {
		return plan.Plan{}, plan.Period{}, err
	}

	p, err := l.catalog.Get(info.Plan)
	if err != nil {
		return plan.Plan{}, plan.Period{}, err
	}

	return p, p.Cadence.PeriodAt(info.PeriodAnchor, l.now()), nil
}

// CheckAndIncrement atomically admits one more creation for the feature, or
// rejects it. A nil return means the counter was incremented and the caller
// may proceed with the domain write.
//
// Persistent write conflicts fail closed: after the bounded retries the
// request is rejected with ErrWriteConflictExhausted rather than admitted
// unchecked.
func (l *Ledger) CheckAndIncrement(ctx context.Context, accountID uuid.UUID, f plan.Feature) error {
	p, period, err := l.window(ctx, accountID)
	if err != nil {
		return err
	}

	limit, ok := p.Limit(f)
	if !ok {
		return ErrUnknownFeature
	}

	if limit == 0 {
		return &LimitExceededError{Feature: f, Limit: 0}
	}

	for attempt := 0; attempt < l.retryAttempts; attempt++ {
		allowed, err := l.store.IncrementIf(ctx, accountID, f, period, limit, l.now())
		switch {
		case err == nil && allowed:
			return nil
		case err == nil:
			return &LimitExceededError{Feature: f, Limit: limit}
		case errors.Is(err, ErrWriteConflict):
			l.log.WarnContext(ctx, "usage increment conflict, retrying",
				"account_id", accountID, "feature", f, "attempt", attempt+1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt+1) * l.retryBackoff):
			}
		default:
			return err
		}
	}

	l.log.ErrorContext(ctx, "usage increment failed closed after retries",
		"account_id", accountID, "feature", f, "attempts", l.retryAttempts)
	return ErrWriteConflictExhausted
}

// Reset zeroes the feature's counter for the current window. Used exclusively
// by the plan-upgrade flow; regular traffic never resets.
func (l *Ledger) Reset(ctx context.Context, accountID uuid.UUID, f plan.Feature) error {
	_, period, err := l.window(ctx, accountID)
	if err != nil {
		return err
	}
	return l.store.SetCount(ctx, accountID, f, period, 0, l.now())
}

// ResetAll zeroes every feature counter for the current window.
func (l *Ledger) ResetAll(ctx context.Context, accountID uuid.UUID) error {
	for _, f := range plan.Features() {
		if err := l.Reset(ctx, accountID, f); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the per-feature usage read model for the active window.
// Limits come from the plan at read time.
func (l *Ledger) Snapshot(ctx context.Context, accountID uuid.UUID) ([]FeatureUsage, error) {
	p, period, err := l.window(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]FeatureUsage, 0, len(p.Limits))
	for _, f := range plan.Features() {
		limit, ok := p.Limit(f)
		if !ok {
			continue
		}

		var count int64
		rec, err := l.store.Get(ctx, accountID, f, period.Start)
		switch {
		case err == nil:
			count = rec.Count
		case errors.Is(err, ErrRecordNotFound):
			// lazily created; zero until first increment
		default:
			return nil, err
		}

		out = append(out, FeatureUsage{
			Feature:     f,
			Count:       count,
			Limit:       limit,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
		})
	}
	return out, nil
}

// ValidateConsistency compares each counter against the authoritative recount
// of domain rows in the same window and returns every feature that diverges.
// Features without a registered recounter are skipped: no recount source
// means nothing to verify against.
func (l *Ledger) ValidateConsistency(ctx context.Context, accountID uuid.UUID) ([]Discrepancy, error) {
	_, period, err := l.window(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var out []Discrepancy
	for _, f := range plan.Features() {
		recount, ok := l.recounters[f]
		if !ok {
			continue
		}

		actual, err := recount(ctx, accountID, period.Start, period.End)
		if err != nil {
			return nil, err
		}

		var ledgerCount int64
		rec, err := l.store.Get(ctx, accountID, f, period.Start)
		switch {
		case err == nil:
			ledgerCount = rec.Count
		case errors.Is(err, ErrRecordNotFound):
		default:
			return nil, err
		}

		if ledgerCount != actual {
			out = append(out, Discrepancy{
				Feature:     f,
				LedgerCount: ledgerCount,
				ActualCount: actual,
				PeriodStart: period.Start,
				PeriodEnd:   period.End,
			})
		}
	}
	return out, nil
}

// Repair sets the feature's counter to the authoritative recount. Safe to
// call repeatedly: a second call with no intervening writes is a no-op.
func (l *Ledger) Repair(ctx context.Context, accountID uuid.UUID, f plan.Feature) error {
	recount, ok := l.recounters[f]
	if !ok {
		return ErrNoRecounterRegistered
	}

	_, period, err := l.window(ctx, accountID)
	if err != nil {
		return err
	}

	actual, err := recount(ctx, accountID, period.Start, period.End)
	if err != nil {
		return err
	}

	l.log.InfoContext(ctx, "repairing usage counter",
		"account_id", accountID, "feature", f, "count", actual)
	return l.store.SetCount(ctx, accountID, f, period, actual, l.now())
}
