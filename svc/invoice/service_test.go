package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
	"github.com/Cachi0001/Biz-sub002/svc/invoice"
	"github.com/Cachi0001/Biz-sub002/svc/revenue"
)

type fixture struct {
	svc       *invoice.Service
	invoices  invoice.Store
	stock     inventory.Store
	revenue   revenue.Recorder
	accountID uuid.UUID
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	return newFixtureOnPlan(t, plan.Weekly)
}

func newFixtureOnPlan(t *testing.T, planID plan.ID) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	accountID := uuid.New()

	catalog, err := plan.LoadCatalog(context.Background(), plan.NewInMemSource(plan.Default()))
	require.NoError(t, err)

	resolver := func(ctx context.Context, id uuid.UUID) (usage.AccountInfo, error) {
		return usage.AccountInfo{Plan: planID, PeriodAnchor: now.AddDate(0, 0, -1)}, nil
	}

	invoices := invoice.NewMemoryStore()
	stock := inventory.NewMemoryStore()
	recorder := revenue.NewMemoryStore()
	ledger := usage.NewLedger(usage.NewMemoryStore(), catalog, resolver,
		usage.WithClock(func() time.Time { return now }))

	svc := invoice.NewService(invoices, stock, ledger, recorder,
		invoice.WithClock(func() time.Time { return now }))

	return &fixture{
		svc:       svc,
		invoices:  invoices,
		stock:     stock,
		revenue:   recorder,
		accountID: accountID,
		now:       now,
	}
}

func (f *fixture) addProduct(t *testing.T, price, cost, qty int64) uuid.UUID {
	t.Helper()

	p := &inventory.Product{
		ID:             uuid.New(),
		AccountID:      f.accountID,
		Name:           "widget",
		UnitPrice:      price,
		UnitCost:       cost,
		QuantityOnHand: qty,
		CreatedAt:      f.now,
		UpdatedAt:      f.now,
	}
	require.NoError(t, f.stock.Save(context.Background(), p))
	return p.ID
}

func (f *fixture) quantityOnHand(t *testing.T, productID uuid.UUID) int64 {
	t.Helper()

	p, err := f.stock.Get(context.Background(), productID)
	require.NoError(t, err)
	return p.QuantityOnHand
}

func (f *fixture) revenueEntries(t *testing.T) []revenue.Entry {
	t.Helper()

	entries, err := f.revenue.ListByAccount(context.Background(), f.accountID,
		f.now.AddDate(0, 0, -1), f.now.AddDate(0, 0, 1))
	require.NoError(t, err)
	return entries
}

func TestService_Create(t *testing.T) {
	t.Parallel()

	t.Run("snapshots prices and commits stock", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)

		inv, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
			CustomerName: "Ada",
			Items:        []invoice.ItemInput{{ProductID: productID, Quantity: 3}},
		})
		require.NoError(t, err)

		require.Equal(t, invoice.StatusDraft, inv.Status)
		require.True(t, inv.InventoryCommitted)
		require.Equal(t, int64(1500), inv.TotalAmount)
		require.Equal(t, int64(900), inv.TotalCost)
		require.Equal(t, int64(600), inv.GrossProfit())
		require.Len(t, inv.Items, 1)
		require.Equal(t, int64(500), inv.Items[0].UnitPrice)

		require.Equal(t, int64(7), f.quantityOnHand(t, productID))

		saved, err := f.svc.Get(context.Background(), f.accountID, inv.ID)
		require.NoError(t, err)
		require.Equal(t, inv.ID, saved.ID)
	})

	t.Run("insufficient stock rejects without partial decrement", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		plenty := f.addProduct(t, 500, 300, 10)
		scarce := f.addProduct(t, 200, 100, 1)

		_, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
			Items: []invoice.ItemInput{
				{ProductID: plenty, Quantity: 2},
				{ProductID: scarce, Quantity: 5},
			},
		})
		require.True(t, inventory.IsInsufficientStockError(err))

		require.Equal(t, int64(10), f.quantityOnHand(t, plenty))
		require.Equal(t, int64(1), f.quantityOnHand(t, scarce))
	})

	t.Run("enforces the plan invoice limit", func(t *testing.T) {
		t.Parallel()

		f := newFixtureOnPlan(t, plan.Free)
		productID := f.addProduct(t, 500, 300, 100)

		for i := 0; i < 5; i++ {
			_, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
				Items: []invoice.ItemInput{{ProductID: productID, Quantity: 1}},
			})
			require.NoError(t, err)
		}

		_, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
			Items: []invoice.ItemInput{{ProductID: productID, Quantity: 1}},
		})
		require.True(t, usage.IsLimitExceededError(err))
		require.Equal(t, int64(95), f.quantityOnHand(t, productID))
	})

	t.Run("rejects empty and non-positive items", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)

		_, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{})
		require.ErrorIs(t, err, invoice.ErrNoLineItems)

		_, err = f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
			Items: []invoice.ItemInput{{ProductID: productID, Quantity: 0}},
		})
		require.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	})
}

func TestService_Transition(t *testing.T) {
	t.Parallel()

	create := func(t *testing.T, f *fixture, productID uuid.UUID) *invoice.Invoice {
		t.Helper()
		inv, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
			CustomerName: "Ada",
			Items:        []invoice.ItemInput{{ProductID: productID, Quantity: 2}},
		})
		require.NoError(t, err)
		return inv
	}

	t.Run("draft to sent to paid records revenue once", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)
		inv := create(t, f, productID)

		inv, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusSent)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusSent, inv.Status)
		require.Nil(t, inv.PaidAt)
		require.Empty(t, f.revenueEntries(t))

		inv, err = f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusPaid)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusPaid, inv.Status)
		require.NotNil(t, inv.PaidAt)

		entries := f.revenueEntries(t)
		require.Len(t, entries, 1)
		require.Equal(t, revenue.SourceInvoice, entries[0].Source)
		require.Equal(t, inv.ID, entries[0].SourceID)
		require.Equal(t, int64(1000), entries[0].Amount)
		require.Equal(t, int64(400), entries[0].Profit)
	})

	t.Run("draft can be paid directly", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)
		inv := create(t, f, productID)

		inv, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusPaid)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusPaid, inv.Status)
		require.Len(t, f.revenueEntries(t), 1)
	})

	t.Run("bounced payment and re-payment keep one revenue entry", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)
		inv := create(t, f, productID)

		inv, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusPaid)
		require.NoError(t, err)
		firstPaidAt := *inv.PaidAt

		inv, err = f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusOverdue)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusOverdue, inv.Status)

		inv, err = f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusPaid)
		require.NoError(t, err)
		require.Equal(t, firstPaidAt, *inv.PaidAt)
		require.Len(t, f.revenueEntries(t), 1)
	})

	t.Run("cancelling an unpaid invoice releases stock", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)
		inv := create(t, f, productID)
		require.Equal(t, int64(8), f.quantityOnHand(t, productID))

		inv, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusCancelled)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusCancelled, inv.Status)
		require.False(t, inv.InventoryCommitted)
		require.Equal(t, int64(10), f.quantityOnHand(t, productID))
	})

	t.Run("cancelling after payment keeps stock committed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 10)
		inv := create(t, f, productID)

		_, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusPaid)
		require.NoError(t, err)
		_, err = f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusOverdue)
		require.NoError(t, err)

		inv, err = f.svc.Transition(context.Background(), f.accountID, inv.ID, invoice.StatusCancelled)
		require.NoError(t, err)
		require.Equal(t, invoice.StatusCancelled, inv.Status)
		require.True(t, inv.InventoryCommitted)
		require.Equal(t, int64(8), f.quantityOnHand(t, productID))
	})

	t.Run("rejects every move outside the lifecycle table", func(t *testing.T) {
		t.Parallel()

		invalid := []struct {
			from, to invoice.Status
		}{
			{invoice.StatusDraft, invoice.StatusOverdue},
			{invoice.StatusSent, invoice.StatusSent},
			{invoice.StatusPaid, invoice.StatusSent},
			{invoice.StatusPaid, invoice.StatusCancelled},
			{invoice.StatusOverdue, invoice.StatusSent},
			{invoice.StatusCancelled, invoice.StatusSent},
			{invoice.StatusCancelled, invoice.StatusPaid},
			{invoice.StatusCancelled, invoice.StatusOverdue},
			{invoice.StatusPaid, invoice.StatusDraft},
		}

		f := newFixture(t)
		productID := f.addProduct(t, 500, 300, 100)

		for _, tc := range invalid {
			inv := create(t, f, productID)
			inv.Status = tc.from
			require.NoError(t, f.invoices.Save(context.Background(), inv))

			_, err := f.svc.Transition(context.Background(), f.accountID, inv.ID, tc.to)
			require.True(t, invoice.IsInvalidTransitionError(err),
				"%s -> %s should be rejected, got %v", tc.from, tc.to, err)

			saved, getErr := f.svc.Get(context.Background(), f.accountID, inv.ID)
			require.NoError(t, getErr)
			require.Equal(t, tc.from, saved.Status, "status must be unchanged after rejected move")
		}
	})

	t.Run("unknown invoice", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		_, err := f.svc.Transition(context.Background(), f.accountID, uuid.New(), invoice.StatusSent)
		require.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
	})
}

func TestService_MarkOverdueSweep(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	productID := f.addProduct(t, 500, 300, 100)

	due := f.now.AddDate(0, 0, -3)
	overdueInv, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
		DueAt: &due,
		Items: []invoice.ItemInput{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.Transition(context.Background(), f.accountID, overdueInv.ID, invoice.StatusSent)
	require.NoError(t, err)

	futureDue := f.now.AddDate(0, 0, 14)
	currentInv, err := f.svc.Create(context.Background(), f.accountID, invoice.CreateInput{
		DueAt: &futureDue,
		Items: []invoice.ItemInput{{ProductID: productID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.svc.Transition(context.Background(), f.accountID, currentInv.ID, invoice.StatusSent)
	require.NoError(t, err)

	flagged, err := f.svc.MarkOverdueSweep(context.Background(), f.now)
	require.NoError(t, err)
	require.Equal(t, 1, flagged)

	saved, err := f.svc.Get(context.Background(), f.accountID, overdueInv.ID)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusOverdue, saved.Status)

	saved, err = f.svc.Get(context.Background(), f.accountID, currentInv.ID)
	require.NoError(t, err)
	require.Equal(t, invoice.StatusSent, saved.Status)

	// Already-flagged invoices are not candidates; a second sweep is a no-op.
	flagged, err = f.svc.MarkOverdueSweep(context.Background(), f.now)
	require.NoError(t, err)
	require.Zero(t, flagged)
}
