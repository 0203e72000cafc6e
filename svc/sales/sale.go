package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
)

// PaymentMethod is how a direct sale was settled.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

// SaleItem is one sold line. Price and cost are snapshotted from the product
// at sale time.
type SaleItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int64
	UnitPrice int64 // snapshot, smallest currency unit
	UnitCost  int64 // snapshot, smallest currency unit
}

// Sale is a completed point-of-sale transaction. Unlike an invoice it has no
// lifecycle: payment, stock decrement and revenue recognition all happen at
// the moment it is recorded.
type Sale struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	Items         []SaleItem
	TotalAmount   int64
	TotalCost     int64
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

// GrossProfit is the revenue contribution of this sale.
func (s *Sale) GrossProfit() int64 {
	return s.TotalAmount - s.TotalCost
}

// StockItems returns the inventory movements backing this sale.
func (s *Sale) StockItems() []inventory.Item {
	out := make([]inventory.Item, 0, len(s.Items))
	for _, it := range s.Items {
		out = append(out, inventory.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
