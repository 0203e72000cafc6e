package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists sales with their items.
type Store interface {
	// Get retrieves a sale scoped to the owning account.
	// Returns ErrSaleNotFound if no sale exists.
	Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error)

	// Save creates a sale. Sales are immutable once recorded.
	Save(ctx context.Context, sale *Sale) error

	// CountCreatedInPeriod returns how many sales the account recorded in
	// the window; the usage ledger's authoritative recount source.
	CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error)
}
