package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
	"github.com/Cachi0001/Biz-sub002/svc/revenue"
	"github.com/Cachi0001/Biz-sub002/svc/sales"
)

type fixture struct {
	svc       *sales.Service
	stock     inventory.Store
	revenue   revenue.Recorder
	accountID uuid.UUID
	now       time.Time
}

func newFixture(t *testing.T, planID plan.ID) *fixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	accountID := uuid.New()

	catalog, err := plan.LoadCatalog(context.Background(), plan.NewInMemSource(plan.Default()))
	require.NoError(t, err)

	resolver := func(ctx context.Context, id uuid.UUID) (usage.AccountInfo, error) {
		return usage.AccountInfo{Plan: planID, PeriodAnchor: now.AddDate(0, 0, -1)}, nil
	}

	stock := inventory.NewMemoryStore()
	recorder := revenue.NewMemoryStore()
	ledger := usage.NewLedger(usage.NewMemoryStore(), catalog, resolver,
		usage.WithClock(func() time.Time { return now }))

	svc := sales.NewService(sales.NewMemoryStore(), stock, ledger, recorder,
		sales.PassthroughTransactor{},
		sales.WithClock(func() time.Time { return now }))

	return &fixture{svc: svc, stock: stock, revenue: recorder, accountID: accountID, now: now}
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

func TestService_Record(t *testing.T) {
	t.Parallel()

	t.Run("decrements stock and records revenue immediately", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, plan.Weekly)
		productID := f.addProduct(t, 500, 300, 10)

		sale, err := f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			Items:         []sales.ItemInput{{ProductID: productID, Quantity: 4}},
			PaymentMethod: sales.PaymentCash,
		})
		require.NoError(t, err)

		require.Equal(t, int64(2000), sale.TotalAmount)
		require.Equal(t, int64(1200), sale.TotalCost)
		require.Equal(t, int64(800), sale.GrossProfit())

		p, err := f.stock.Get(context.Background(), productID)
		require.NoError(t, err)
		require.Equal(t, int64(6), p.QuantityOnHand)

		entries, err := f.revenue.ListByAccount(context.Background(), f.accountID,
			f.now.AddDate(0, 0, -1), f.now.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, revenue.SourceSale, entries[0].Source)
		require.Equal(t, sale.ID, entries[0].SourceID)
		require.Equal(t, int64(2000), entries[0].Amount)

		saved, err := f.svc.Get(context.Background(), f.accountID, sale.ID)
		require.NoError(t, err)
		require.Equal(t, sale.ID, saved.ID)
	})

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, plan.Weekly)
		productID := f.addProduct(t, 500, 300, 2)

		_, err := f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			Items:         []sales.ItemInput{{ProductID: productID, Quantity: 5}},
			PaymentMethod: sales.PaymentCash,
		})
		require.True(t, inventory.IsInsufficientStockError(err))

		p, err := f.stock.Get(context.Background(), productID)
		require.NoError(t, err)
		require.Equal(t, int64(2), p.QuantityOnHand)

		entries, err := f.revenue.ListByAccount(context.Background(), f.accountID,
			f.now.AddDate(0, 0, -1), f.now.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Empty(t, entries)
	})

	t.Run("enforces the plan sale limit", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, plan.Free)
		productID := f.addProduct(t, 500, 300, 100)

		for i := 0; i < 10; i++ {
			_, err := f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
				Items:         []sales.ItemInput{{ProductID: productID, Quantity: 1}},
				PaymentMethod: sales.PaymentCash,
			})
			require.NoError(t, err)
		}

		_, err := f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			Items:         []sales.ItemInput{{ProductID: productID, Quantity: 1}},
			PaymentMethod: sales.PaymentCash,
		})
		require.True(t, usage.IsLimitExceededError(err))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, plan.Weekly)
		productID := f.addProduct(t, 500, 300, 10)

		_, err := f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			PaymentMethod: sales.PaymentCash,
		})
		require.ErrorIs(t, err, sales.ErrNoSaleItems)

		_, err = f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			Items:         []sales.ItemInput{{ProductID: productID, Quantity: -1}},
			PaymentMethod: sales.PaymentCash,
		})
		require.ErrorIs(t, err, inventory.ErrInvalidQuantity)

		_, err = f.svc.Record(context.Background(), f.accountID, sales.RecordInput{
			Items:         []sales.ItemInput{{ProductID: productID, Quantity: 1}},
			PaymentMethod: "barter",
		})
		require.ErrorIs(t, err, sales.ErrInvalidPaymentMethod)
	})
}
