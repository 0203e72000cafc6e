package sales

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
	"github.com/Cachi0001/Biz-sub002/pkg/usage"
	"github.com/Cachi0001/Biz-sub002/svc/revenue"
)

// ItemInput is one requested sale line; price and cost are resolved from the
// product at sale time.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int64
}

// RecordInput describes a direct sale.
type RecordInput struct {
	Items         []ItemInput
	PaymentMethod PaymentMethod
}

// Transactor runs a function as one all-or-nothing unit. The production
// implementation is pg.Transactor; PassthroughTransactor serves in-memory
// tests.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PassthroughTransactor executes the function directly with no transaction
// boundary.
type PassthroughTransactor struct{}

func (PassthroughTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service records point-of-sale transactions. A sale settles immediately:
// stock decrement, the sale row and the revenue entry are written as one
// unit.
type Service struct {
	sales   Store
	stock   inventory.Store
	ledger  *usage.Ledger
	revenue revenue.Recorder
	tx      Transactor
	now     func() time.Time
	log     *slog.Logger
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

// NewService creates a sales service.
// Panics if any required dependency is nil to fail fast during wiring.
func NewService(sales Store, stock inventory.Store, ledger *usage.Ledger, recorder revenue.Recorder, tx Transactor, opts ...ServiceOption) *Service {
	if sales == nil {
		panic("sales: Store is required")
	}
	if stock == nil {
		panic("sales: inventory.Store is required")
	}
	if ledger == nil {
		panic("sales: usage.Ledger is required")
	}
	if recorder == nil {
		panic("sales: revenue.Recorder is required")
	}
	if tx == nil {
		panic("sales: Transactor is required")
	}

	s := &Service{
		sales:   sales,
		stock:   stock,
		ledger:  ledger,
		revenue: recorder,
		tx:      tx,
		now:     func() time.Time { return time.Now().UTC() },
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record admits the sale against the usage limit, snapshots product prices
// and writes stock decrement, sale and revenue entry as one unit.
func (s *Service) Record(ctx context.Context, accountID uuid.UUID, in RecordInput) (*Sale, error) {
	if len(in.Items) == 0 {
		return nil, ErrNoSaleItems
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, inventory.ErrInvalidQuantity
		}
	}
	switch in.PaymentMethod {
	case PaymentCash, PaymentTransfer, PaymentCard:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	if err := s.ledger.CheckAndIncrement(ctx, accountID, plan.FeatureSales); err != nil {
		return nil, err
	}

	now := s.now()
	sale := &Sale{
		ID:            uuid.New(),
		AccountID:     accountID,
		PaymentMethod: in.PaymentMethod,
		CreatedAt:     now,
	}

	for _, it := range in.Items {
		p, err := s.stock.Get(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		sale.Items = append(sale.Items, SaleItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  it.Quantity,
			UnitPrice: p.UnitPrice,
			UnitCost:  p.UnitCost,
		})
		sale.TotalAmount += p.UnitPrice * it.Quantity
		sale.TotalCost += p.UnitCost * it.Quantity
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.stock.Commit(ctx, accountID, sale.StockItems()); err != nil {
			return err
		}
		if err := s.sales.Save(ctx, sale); err != nil {
			return err
		}
		return s.revenue.Record(ctx, &revenue.Entry{
			ID:         uuid.New(),
			AccountID:  accountID,
			Source:     revenue.SourceSale,
			SourceID:   sale.ID,
			Amount:     sale.TotalAmount,
			Profit:     sale.GrossProfit(),
			OccurredAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "sale recorded",
		"sale_id", sale.ID, "account_id", accountID, "amount", sale.TotalAmount)
	return sale, nil
}

// Get retrieves a sale scoped to the owning account.
func (s *Service) Get(ctx context.Context, accountID, saleID uuid.UUID) (*Sale, error) {
	return s.sales.Get(ctx, accountID, saleID)
}
