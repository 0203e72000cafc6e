package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines account persistence. The upgrade history is append-only:
// implementations must never update or delete history rows.
type Store interface {
	// Get retrieves an account by ID.
	// Returns ErrAccountNotFound if no account exists.
	Get(ctx context.Context, id uuid.UUID) (*Account, error)

	// Save creates or updates an account, using ID to decide which.
	Save(ctx context.Context, a *Account) error

	// AppendUpgrade appends one record to the account's upgrade audit trail.
	AppendUpgrade(ctx context.Context, rec *UpgradeRecord) error

	// UpgradeHistory returns the account's audit trail, oldest first.
	UpgradeHistory(ctx context.Context, accountID uuid.UUID) ([]UpgradeRecord, error)

	// ListExpiryCandidates returns accounts whose end date has passed but
	// whose stored status hint still claims otherwise.
	ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]*Account, error)

	// ListUpdatedSince returns accounts with writes after the given instant,
	// used to scope the consistency sweep to recent activity.
	ListUpdatedSince(ctx context.Context, since time.Time) ([]*Account, error)
}
