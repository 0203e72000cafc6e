package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Product is a stock-tracked item owned by one account. QuantityOnHand is
// decremented when stock is committed (invoice creation, direct sale) and
// must never go negative.
type Product struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Name           string
	UnitPrice      int64 // selling price, smallest currency unit
	UnitCost       int64 // acquisition cost, smallest currency unit
	QuantityOnHand int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Item is a requested quantity of one product, used by Commit and Release.
type Item struct {
	ProductID uuid.UUID
	Quantity  int64
}
