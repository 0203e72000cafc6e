package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Source identifies which flow produced a revenue entry.
type Source string

const (
	SourceInvoice Source = "invoice"
	SourceSale    Source = "sale"
)

// Entry is one recognized revenue event. Entries are append-only: amounts are
// recorded exactly once per source document and never mutated.
type Entry struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Source     Source
	SourceID   uuid.UUID // invoice or sale that produced this entry
	Amount     int64     // smallest currency unit
	Profit     int64     // amount minus cost of goods sold
	OccurredAt time.Time
}

// Recorder appends revenue entries and serves period reads for reporting.
type Recorder interface {
	// Record appends one entry.
	Record(ctx context.Context, e *Entry) error

	// ListByAccount returns the account's entries in a window, newest first.
	ListByAccount(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Entry, error)
}
