package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists invoices with their line items.
type Store interface {
	// Get retrieves an invoice scoped to the owning account.
	// Returns ErrInvoiceNotFound if no invoice exists.
	Get(ctx context.Context, accountID, id uuid.UUID) (*Invoice, error)

	// Save creates or updates an invoice and its line items.
	Save(ctx context.Context, inv *Invoice) error

	// ListOverdueCandidates returns sent invoices whose due date has passed
	// as of asOf. The overdue sweep feeds these through the lifecycle table.
	ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Invoice, error)

	// CountCreatedInPeriod returns how many invoices the account created in
	// the window; the usage ledger's authoritative recount source.
	CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error)
}
