package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
)

// pgStore is the PostgreSQL-backed revenue recorder.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Recorder backed by the revenue_entries table.
func NewPGStore(pool *pgxpool.Pool) Recorder {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Record(ctx context.Context, e *Entry) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO revenue_entries (id, account_id, source, source_id, amount, profit, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.AccountID, e.Source, e.SourceID, e.Amount, e.Profit, e.OccurredAt)
	return err
}

func (s *pgStore) ListByAccount(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]Entry, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, account_id, source, source_id, amount, profit, occurred_at
		FROM revenue_entries
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at DESC`,
		accountID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.AccountID, &e.Source, &e.SourceID, &e.Amount, &e.Profit, &e.OccurredAt)
		return e, err
	})
}
