package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists products and enforces the non-negative stock invariant.
type Store interface {
	// Get retrieves a product by ID.
	// Returns ErrProductNotFound if no product exists.
	Get(ctx context.Context, id uuid.UUID) (*Product, error)

	// Save creates or updates a product.
	Save(ctx context.Context, p *Product) error

	// Commit decrements stock for every item, all-or-nothing. When any item
	// cannot be covered the whole commit is rejected with an
	// InsufficientStockError listing every shortfall, and no quantity changes.
	Commit(ctx context.Context, accountID uuid.UUID, items []Item) error

	// Release returns previously committed stock, used when an unpaid
	// invoice is cancelled.
	Release(ctx context.Context, accountID uuid.UUID, items []Item) error

	// CountCreatedInPeriod returns how many products the account created in
	// the window; the usage ledger's authoritative recount source.
	CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error)
}
