package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Cachi0001/Biz-sub002/pkg/subscription"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
)

// Locker serializes the sweep across instances. *redis.Lock satisfies it;
// NopLocker serves single-node setups and tests.
type Locker interface {
	Acquire(ctx context.Context) (release func(context.Context) error, acquired bool, err error)
}

// NopLocker always grants the lease. Use only when exactly one instance runs
// the sweep.
type NopLocker struct{}

func (NopLocker) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

// OverdueSweeper flags sent invoices whose due date has passed.
type OverdueSweeper interface {
	MarkOverdueSweep(ctx context.Context, asOf time.Time) (int, error)
}

// Report summarizes one sweep run.
type Report struct {
	Skipped                bool // another instance held the lease
	AccountsExpired        int
	InvoicesFlaggedOverdue int
	DiscrepanciesFound     int
	DiscrepanciesRepaired  int
}

// Job is the periodic reconciliation sweep. It expires lapsed subscriptions,
// flags overdue invoices and repairs usage counters that drifted from the
// authoritative row counts. Every step is idempotent, so overlapping or
// repeated runs converge instead of compounding.
type Job struct {
	accounts subscription.Store
	ledger   *usage.Ledger
	invoices OverdueSweeper
	locker   Locker
	schedule string
	lookback time.Duration
	now      func() time.Time
	log      *slog.Logger
	cron     *cron.Cron
}

// Option configures optional job settings.
type Option func(*Job)

// WithClock overrides the time source, mainly for tests with fixed times.
func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		if now != nil {
			j.now = now
		}
	}
}

// WithLogger sets the job's logger.
func WithLogger(log *slog.Logger) Option {
	return func(j *Job) {
		if log != nil {
			j.log = log
		}
	}
}

// WithSchedule sets the cron schedule, e.g. "@every 1h" or "0 * * * *".
func WithSchedule(schedule string) Option {
	return func(j *Job) {
		if schedule != "" {
			j.schedule = schedule
		}
	}
}

// WithLookback bounds the consistency sweep to accounts updated within the
// window. Larger windows catch older drift at the cost of a bigger scan.
func WithLookback(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.lookback = d
		}
	}
}

// NewJob creates a reconciliation job.
// Panics if any required dependency is nil to fail fast during wiring.
func NewJob(accounts subscription.Store, ledger *usage.Ledger, invoices OverdueSweeper, locker Locker, opts ...Option) *Job {
	if accounts == nil {
		panic("reconcile: subscription.Store is required")
	}
	if ledger == nil {
		panic("reconcile: usage.Ledger is required")
	}
	if invoices == nil {
		panic("reconcile: OverdueSweeper is required")
	}
	if locker == nil {
		panic("reconcile: Locker is required")
	}

	j := &Job{
		accounts: accounts,
		ledger:   ledger,
		invoices: invoices,
		locker:   locker,
		schedule: "@every 1h",
		lookback: 24 * time.Hour,
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// RunOnce executes one full sweep under the lease. When another instance
// holds the lease the run is skipped, not queued.
func (j *Job) RunOnce(ctx context.Context) (*Report, error) {
	release, acquired, err := j.locker.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !acquired {
		j.log.InfoContext(ctx, "reconciliation skipped, lease held elsewhere")
		return &Report{Skipped: true}, nil
	}
	defer func() {
		if err := release(ctx); err != nil {
			j.log.WarnContext(ctx, "failed to release reconciliation lease", "error", err)
		}
	}()

	report := &Report{}
	now := j.now()

	if err := j.expireLapsed(ctx, now, report); err != nil {
		return report, err
	}

	flagged, err := j.invoices.MarkOverdueSweep(ctx, now)
	if err != nil {
		return report, err
	}
	report.InvoicesFlaggedOverdue = flagged

	if err := j.repairDrift(ctx, now, report); err != nil {
		return report, err
	}

	j.log.InfoContext(ctx, "reconciliation finished",
		"accounts_expired", report.AccountsExpired,
		"invoices_flagged_overdue", report.InvoicesFlaggedOverdue,
		"discrepancies_found", report.DiscrepanciesFound,
		"discrepancies_repaired", report.DiscrepanciesRepaired,
	)
	return report, nil
}

// expireLapsed persists the expired status hint on accounts whose
// subscription has run out. The hint only speeds up queries; resolution
// still recomputes from dates, so a missed run costs nothing but freshness.
func (j *Job) expireLapsed(ctx context.Context, now time.Time, report *Report) error {
	candidates, err := j.accounts.ListExpiryCandidates(ctx, now)
	if err != nil {
		return err
	}

	for _, acc := range candidates {
		res := subscription.Resolve(acc, now)
		if res.Status != subscription.StatusExpired {
			continue
		}

		acc.Status = subscription.StatusExpired
		acc.UpdatedAt = now
		if err := j.accounts.Save(ctx, acc); err != nil {
			j.log.ErrorContext(ctx, "failed to persist expired status",
				"account_id", acc.ID, "error", err)
			continue
		}
		report.AccountsExpired++
	}
	return nil
}

// repairDrift recounts usage for recently active accounts and overwrites any
// counter that disagrees with the authoritative row count.
func (j *Job) repairDrift(ctx context.Context, now time.Time, report *Report) error {
	active, err := j.accounts.ListUpdatedSince(ctx, now.Add(-j.lookback))
	if err != nil {
		return err
	}

	for _, acc := range active {
		discrepancies, err := j.ledger.ValidateConsistency(ctx, acc.ID)
		if err != nil {
			j.log.ErrorContext(ctx, "consistency check failed",
				"account_id", acc.ID, "error", err)
			continue
		}

		for _, d := range discrepancies {
			report.DiscrepanciesFound++
			j.log.WarnContext(ctx, "usage counter drift detected",
				"account_id", acc.ID,
				"feature", d.Feature,
				"ledger_count", d.LedgerCount,
				"actual_count", d.ActualCount,
			)
			if err := j.ledger.Repair(ctx, acc.ID, d.Feature); err != nil {
				j.log.ErrorContext(ctx, "failed to repair usage counter",
					"account_id", acc.ID, "feature", d.Feature, "error", err)
				continue
			}
			report.DiscrepanciesRepaired++
		}
	}
	return nil
}

// Start schedules the sweep on its cron schedule. Call Stop to shut down.
func (j *Job) Start() error {
	j.cron = cron.New()
	_, err := j.cron.AddFunc(j.schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.log.Error("reconciliation run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (j *Job) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}
