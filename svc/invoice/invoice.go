package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/Cachi0001/Biz-sub002/pkg/inventory"
	"github.com/Cachi0001/Biz-sub002/pkg/statemachine"
)

// Status is an invoice lifecycle state. It implements statemachine.State so
// the lifecycle table can be expressed directly over stored statuses.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Name() string { return string(s) }

// Lifecycle events. Each one targets exactly one status; EventPay fires from
// sent, overdue and draft (immediate cash payment without sending).
var (
	EventSend        = statemachine.StringEvent("send")
	EventPay         = statemachine.StringEvent("pay")
	EventMarkOverdue = statemachine.StringEvent("mark_overdue")
	EventCancel      = statemachine.StringEvent("cancel")
)

// LineItem is one invoice line. Price and cost are snapshotted from the
// product at creation time so later product edits don't rewrite history.
type LineItem struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int64
	UnitPrice int64 // snapshot, smallest currency unit
	UnitCost  int64 // snapshot, smallest currency unit
}

// Invoice is a customer-facing bill backed by committed stock. Status changes
// only through the lifecycle table; stores persist whatever status the
// service hands them without validating transitions themselves.
type Invoice struct {
	ID                 uuid.UUID
	AccountID          uuid.UUID
	CustomerName       string
	Status             Status
	Items              []LineItem
	TotalAmount        int64
	TotalCost          int64
	InventoryCommitted bool // stock still held by this invoice
	DueAt              *time.Time
	PaidAt             *time.Time // set exactly once, on first transition to paid
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// GrossProfit is the revenue contribution of this invoice when paid.
func (inv *Invoice) GrossProfit() int64 {
	return inv.TotalAmount - inv.TotalCost
}

// StockItems returns the inventory movements backing this invoice.
func (inv *Invoice) StockItems() []inventory.Item {
	out := make([]inventory.Item, 0, len(inv.Items))
	for _, it := range inv.Items {
		out = append(out, inventory.Item{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}
