package invoice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/statemachine"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
	"github.com/Cachi0001/Biz-sub002/svc/revenue"
)

// ItemInput is one requested invoice line; price and cost are resolved from
// the product at creation time.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// CreateInput describes a new invoice.
type CreateInput struct {
	CustomerName string
	DueAt        *time.Time
	Items        []ItemInput
}

// Service drives the invoice lifecycle. Creation enforces the usage limit and
// commits stock before the draft exists; status changes go through the
// transition table, which owns the revenue and stock side effects.
type Service struct {
	invoices Store
	stock    inventory.Store
	ledger   *usage.Ledger
	revenue  revenue.Recorder
	machine  *statemachine.Machine
	now      func() time.Time
	log      *slog.Logger
}

// ServiceOption configures optional service settings.
type ServiceOption func(*Service)

// WithClock overrides the time source, mainly for tests with fixed times.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service's logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates an invoice service.
// Panics if any required dependency is nil to fail fast during wiring.
func NewService(invoices Store, stock inventory.Store, ledger *usage.Ledger, recorder revenue.Recorder, opts ...ServiceOption) *Service {
	if invoices == nil {
		panic("invoice: Store is required")
	}
	if stock == nil {
		panic("invoice: inventory.Store is required")
	}
	if ledger == nil {
		panic("invoice: usage.Ledger is required")
	}
	if recorder == nil {
		panic("invoice: revenue.Recorder is required")
	}

	s := &Service{
		invoices: invoices,
		stock:    stock,
		ledger:   ledger,
		revenue:  recorder,
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.machine = s.buildLifecycle()
	return s
}

// buildLifecycle wires the transition table. Revenue recording and stock
// release live here as transition actions, so they can never run against a
// move the table rejects.
func (s *Service) buildLifecycle() *statemachine.Machine {
	m := statemachine.New()

	pay := []statemachine.Action{s.recordPayment}
	cancel := []statemachine.Action{s.releaseStock}

	m.AddTransition(StatusDraft, StatusSent, EventSend, nil, nil)
	m.AddTransition(StatusDraft, StatusPaid, EventPay, nil, pay)
	m.AddTransition(StatusDraft, StatusCancelled, EventCancel, nil, cancel)

	m.AddTransition(StatusSent, StatusPaid, EventPay, nil, pay)
	m.AddTransition(StatusSent, StatusOverdue, EventMarkOverdue, nil, nil)
	m.AddTransition(StatusSent, StatusCancelled, EventCancel, nil, cancel)

	// A paid invoice can be flagged overdue when the payment later bounces;
	// the recorded revenue stays, and re-paying does not record it again.
	m.AddTransition(StatusPaid, StatusOverdue, EventMarkOverdue, nil, nil)

	m.AddTransition(StatusOverdue, StatusPaid, EventPay, nil, pay)
	m.AddTransition(StatusOverdue, StatusCancelled, EventCancel, nil, cancel)

	return m
}

// recordPayment sets PaidAt and records revenue, both exactly once. An
// invoice re-entering paid after an overdue flag keeps its original PaidAt
// and produces no second revenue entry.
func (s *Service) recordPayment(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
	inv := data.(*Invoice)
	if inv.PaidAt != nil {
		return nil
	}

	now := s.now()
	if err := s.revenue.Record(ctx, &revenue.Entry{
		ID:         uuid.New(),
		AccountID:  inv.AccountID,
		Source:     revenue.SourceInvoice,
		SourceID:   inv.ID,
		Amount:     inv.TotalAmount,
		Profit:     inv.GrossProfit(),
		OccurredAt: now,
	}); err != nil {
		return err
	}

	inv.PaidAt = &now
	return nil
}

// releaseStock returns held stock when an unpaid invoice is cancelled. Paid
// invoices keep their stock committed: the goods are considered sold.
func (s *Service) releaseStock(ctx context.Context, from, to statemachine.State, event statemachine.Event, data any) error {
	inv := data.(*Invoice)
	if inv.PaidAt != nil || !inv.InventoryCommitted {
		return nil
	}

	if err := s.stock.Release(ctx, inv.AccountID, inv.StockItems()); err != nil {
		return err
	}
	inv.InventoryCommitted = false
	return nil
}

// Create admits the invoice against the usage limit, snapshots product prices,
// commits stock and persists the draft, in that order. Stock is committed
// before the invoice exists so two invoices can never both claim the last
// unit; a failed persist releases the stock again.
func (s *Service) Create(ctx context.Context, accountID uuid.UUID, in CreateInput) (*Invoice, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoLineItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, inventory.ErrInvalidQuantity
		}
	}

	if err := s.ledger.CheckAndIncrement(ctx, accountID, plan.FeatureInvoices); err != nil {
		return nil, err
	}

	now := s.now()
	inv := &Invoice{
		ID:           uuid.New(),
		AccountID:    accountID,
		CustomerName: in.CustomerName,
		Status:       StatusDraft,
		DueAt:        in.DueAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, it := range in.Items {
		p, err := s.stock.Get(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.UnitPrice,
			UnitCost:  p.UnitCost,
		})
		inv.TotalAmount += p.UnitPrice * it.Quantity
		inv.TotalCost += p.UnitCost * it.Quantity
	}

	if err := s.stock.Commit(ctx, accountID, inv.StockItems()); err != nil {
		return nil, err
	}
	inv.InventoryCommitted = true

	if err := s.invoices.Save(ctx, inv); err != nil {
		// The stock was already taken; give it back so the failed create
		// leaves quantities untouched.
		if relErr := s.stock.Release(ctx, accountID, inv.StockItems()); relErr != nil {
			s.log.ErrorContext(ctx, "failed to release stock after invoice persist failure",
				"invoice_id", inv.ID, "account_id", accountID, "error", relErr)
			return nil, errors.Join(err, relErr)
		}
		return nil, err
	}

	return inv, nil
}

// Get retrieves an invoice scoped to the owning account.
func (s *Service) Get(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error) {
	return s.invoices.Get(ctx, accountID, invoiceID)
}

// Transition moves the invoice to the target status through the lifecycle
// table. Side effects (revenue, stock release) run before the new status is
// persisted; a rejected move returns InvalidTransitionError and changes
// nothing.
func (s *Service) Transition(ctx context.Context, accountID, invoiceID uuid.UUID, target Status) (*Invoice, error) {
	inv, err := s.invoices.Get(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}

	event, err := eventFor(inv.Status, target)
	if err != nil {
		return nil, err
	}

	next, err := s.machine.Fire(ctx, inv.Status, event, inv)
	if err != nil {
		if statemachine.IsNoTransitionAvailableError(err) || statemachine.IsTransitionRejectedError(err) {
			return nil, NewInvalidTransitionError(inv.Status, target)
		}
		return nil, err
	}

	inv.Status = next.(Status)
	inv.UpdatedAt = s.now()
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "invoice transitioned",
		"invoice_id", inv.ID, "account_id", accountID, "status", inv.Status)
	return inv, nil
}

// MarkOverdueSweep flags every sent invoice whose due date has passed. Run
// periodically; an invoice already flagged is not a candidate, so repeated
// sweeps are no-ops.
func (s *Service) MarkOverdueSweep(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := s.invoices.ListOverdueCandidates(ctx, asOf)
	if err != nil {
		return 0, err
	}

	flagged := 0
	for _, inv := range candidates {
		if _, err := s.Transition(ctx, inv.AccountID, inv.ID, StatusOverdue); err != nil {
			s.log.ErrorContext(ctx, "failed to mark invoice overdue",
				"invoice_id", inv.ID, "error", err)
			continue
		}
		flagged++
	}
	return flagged, nil
}

// eventFor maps a target status to the lifecycle event that reaches it.
func eventFor(current, target Status) (statemachine.Event, error) {
	switch target {
	case StatusSent:
		return EventSend, nil
	case StatusPaid:
		return EventPay, nil
	case StatusOverdue:
		return EventMarkOverdue, nil
	case StatusCancelled:
		return EventCancel, nil
	case StatusDraft:
		// Nothing transitions back to draft.
		return nil, NewInvalidTransitionError(current, StatusDraft)
	default:
		return nil, ErrUnknownStatus
	}
}
