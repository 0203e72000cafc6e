package billing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/proration"
	"github.com/Cachi0001/Biz-sub002/pkg/subscription"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
)

// UpgradeResult is the caller-facing confirmation of a completed upgrade.
type UpgradeResult struct {
	NewPlan           plan.ID
	TotalDurationDays int
	BonusDurationDays int
}

// StatusInfo is the read model for the subscription status endpoint.
type StatusInfo struct {
	Plan          plan.ID
	Status        subscription.Status
	DaysRemaining int
}

// Orchestrator executes plan changes as one logical transaction: resolve,
// prorate, persist the new plan, append the audit record and reset usage
// counters together.
type Orchestrator struct {
	accounts subscription.Store
	ledger   *usage.Ledger
	catalog  plan.Catalog
	gateway  PaymentGateway
	tx       Transactor
	now      func() time.Time
	log      *slog.Logger
}

// Option configures optional orchestrator settings.
type Option func(*Orchestrator)

// WithClock overrides the time source, mainly for tests with fixed times.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the orchestrator's logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates an upgrade orchestrator.
// Panics if any required dependency is nil to fail fast during wiring.
func New(accounts subscription.Store, ledger *usage.Ledger, catalog plan.Catalog, gateway PaymentGateway, tx Transactor, opts ...Option) *Orchestrator {
	if accounts == nil {
		panic("billing: subscription.Store is required")
	}
	if ledger == nil {
		panic("billing: usage.Ledger is required")
	}
	if catalog == nil {
		panic("billing: plan catalog is required")
	}
	if gateway == nil {
		panic("billing: PaymentGateway is required")
	}
	if tx == nil {
		panic("billing: Transactor is required")
	}

	o := &Orchestrator{
		accounts: accounts,
		ledger:   ledger,
		catalog:  catalog,
		gateway:  gateway,
		tx:       tx,
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SubscriptionStatus resolves the account's canonical status. The stored
// status flag is never consulted beyond trial intent; resolution happens on
// every call.
func (o *Orchestrator) SubscriptionStatus(ctx context.Context, accountID uuid.UUID) (*StatusInfo, error) {
	acc, err := o.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	res := subscription.Resolve(acc, o.now())
	return &StatusInfo{
		Plan:          acc.CurrentPlan(),
		Status:        res.Status,
		DaysRemaining: res.DaysRemaining,
	}, nil
}

// Upgrade moves the account to targetPlan, converting unused time on the
// current plan into bonus days on the new one and resetting usage counters
// so near-exhausted counts don't carry into the fresh limits.
//
// Payment is verified first; nothing mutates on verification failure. The
// persist + history + reset block runs inside the transactor, so a failure
// in any step leaves no partial state.
func (o *Orchestrator) Upgrade(ctx context.Context, accountID uuid.UUID, targetPlan plan.ID, paymentReference string) (*UpgradeResult, error) {
	target, err := o.catalog.Get(targetPlan)
	if err != nil {
		return nil, err
	}
	if target.IsFree() {
		return nil, ErrUpgradeToFreePlan
	}

	verification, err := o.gateway.Verify(ctx, paymentReference)
	if err != nil {
		return nil, err
	}
	if !verification.Success {
		return nil, ErrPaymentVerificationFailed
	}
	if verification.PlanIntent != "" && plan.Normalize(verification.PlanIntent) != target.ID {
		return nil, ErrPaymentPlanMismatch
	}

	acc, err := o.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := o.now()
	res := subscription.Resolve(acc, now)

	current, err := o.currentValuePlan(acc, res)
	if err != nil {
		return nil, err
	}

	pro := proration.Calculate(current, res.DaysRemaining, target)

	fromPlan := acc.CurrentPlan()
	endsAt := now.AddDate(0, 0, pro.TotalDurationDays)

	err = o.tx.WithinTx(ctx, func(ctx context.Context) error {
		acc.Plan = target.ID
		acc.Status = subscription.StatusActive
		acc.TrialEndsAt = nil
		acc.SubscriptionStartedAt = &now
		acc.SubscriptionEndsAt = &endsAt
		acc.UpdatedAt = now

		if err := o.accounts.Save(ctx, acc); err != nil {
			return err
		}

		if err := o.accounts.AppendUpgrade(ctx, &subscription.UpgradeRecord{
			ID:               uuid.New(),
			AccountID:        acc.ID,
			FromPlan:         fromPlan,
			ToPlan:           target.ID,
			RemainingValue:   pro.RemainingValue,
			BonusDaysGranted: pro.BonusDurationDays,
			CreatedAt:        now,
		}); err != nil {
			return err
		}

		// Fair-usage policy: counters start over with the new plan's window.
		return o.ledger.ResetAll(ctx, acc.ID)
	})
	if err != nil {
		return nil, err
	}

	o.log.InfoContext(ctx, "plan upgraded",
		"account_id", acc.ID,
		"from_plan", fromPlan,
		"to_plan", target.ID,
		"bonus_days", pro.BonusDurationDays,
		"total_days", pro.TotalDurationDays,
	)

	return &UpgradeResult{
		NewPlan:           target.ID,
		TotalDurationDays: pro.TotalDurationDays,
		BonusDurationDays: pro.BonusDurationDays,
	}, nil
}

// currentValuePlan determines which plan prices the account's remaining days.
// A trial is valued at the weekly tier's daily rate; expired and free
// accounts have nothing left to convert, which Calculate handles via zero
// remaining days.
func (o *Orchestrator) currentValuePlan(acc *subscription.Account, res subscription.Resolution) (plan.Plan, error) {
	if res.Status == subscription.StatusTrial {
		return o.catalog.Get(plan.Weekly)
	}
	return o.catalog.Get(acc.CurrentPlan())
}
