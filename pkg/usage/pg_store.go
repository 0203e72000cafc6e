package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
	"github.com/Cachi0001/Biz-sub002/pkg/plan"
)

// pgStore is the PostgreSQL-backed usage store. The conditional increment is
// a single upsert statement, so atomicity comes from the database row lock
// rather than application-level coordination.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the usage_records table.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Get(ctx context.Context, accountID uuid.UUID, f plan.Feature, periodStart time.Time) (*Record, error) {
	var rec Record
	err := s.q(ctx).QueryRow(ctx, `
		SELECT account_id, feature, period_start, period_end, count, updated_at
		FROM usage_records
		WHERE account_id = $1 AND feature = $2 AND period_start = $3`,
		accountID, f, periodStart.UTC()).
		Scan(&rec.AccountID, &rec.Feature, &rec.PeriodStart, &rec.PeriodEnd, &rec.Count, &rec.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// IncrementIf relies on the upsert's conditional DO UPDATE: when the counter
// already sits at the limit the WHERE clause filters the update out, no row
// comes back, and the call reports not-allowed without having written.
func (s *pgStore) IncrementIf(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, limit int64, now time.Time) (bool, error) {
	var count int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO usage_records (account_id, feature, period_start, period_end, count, updated_at)
		VALUES ($1, $2, $3, $4, 1, $5)
		ON CONFLICT (account_id, feature, period_start) DO UPDATE
			SET count = usage_records.count + 1, updated_at = EXCLUDED.updated_at
			WHERE $6::bigint < 0 OR usage_records.count < $6
		RETURNING count`,
		accountID, f, period.Start.UTC(), period.End.UTC(), now.UTC(), limit).
		Scan(&count)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return false, nil
		}
		if pg.IsSerializationError(err) {
			return false, ErrWriteConflict
		}
		return false, err
	}
	return true, nil
}

func (s *pgStore) SetCount(ctx context.Context, accountID uuid.UUID, f plan.Feature, period plan.Period, count int64, now time.Time) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO usage_records (account_id, feature, period_start, period_end, count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id, feature, period_start) DO UPDATE
			SET count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`,
		accountID, f, period.Start.UTC(), period.End.UTC(), count, now.UTC())
	return err
}
