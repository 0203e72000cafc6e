package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
)

// pgStore is the PostgreSQL-backed account store. Every query goes through
// pg.QuerierFromContext so calls inside a Transactor join its transaction.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the accounts and upgrade_history tables.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	row := s.q(ctx).QueryRow(ctx, `
		SELECT id, plan, status, trial_ends_at, subscription_started_at, subscription_ends_at, created_at, updated_at
		FROM accounts
		WHERE id = $1`, id)

	a, err := scanAccount(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *pgStore) Save(ctx context.Context, a *Account) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO accounts (id, plan, status, trial_ends_at, subscription_started_at, subscription_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			trial_ends_at = EXCLUDED.trial_ends_at,
			subscription_started_at = EXCLUDED.subscription_started_at,
			subscription_ends_at = EXCLUDED.subscription_ends_at,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.Plan, a.Status, a.TrialEndsAt, a.SubscriptionStartedAt, a.SubscriptionEndsAt, a.CreatedAt, a.UpdatedAt)
	return err
}

func (s *pgStore) AppendUpgrade(ctx context.Context, rec *UpgradeRecord) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO upgrade_history (id, account_id, from_plan, to_plan, remaining_value, bonus_days_granted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.AccountID, rec.FromPlan, rec.ToPlan, rec.RemainingValue, rec.BonusDaysGranted, rec.CreatedAt)
	return err
}

func (s *pgStore) UpgradeHistory(ctx context.Context, accountID uuid.UUID) ([]UpgradeRecord, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, account_id, from_plan, to_plan, remaining_value, bonus_days_granted, created_at
		FROM upgrade_history
		WHERE account_id = $1
		ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UpgradeRecord
	for rows.Next() {
		var rec UpgradeRecord
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.FromPlan, &rec.ToPlan, &rec.RemainingValue, &rec.BonusDaysGranted, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *pgStore) ListExpiryCandidates(ctx context.Context, asOf time.Time) ([]*Account, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, plan, status, trial_ends_at, subscription_started_at, subscription_ends_at, created_at, updated_at
		FROM accounts
		WHERE subscription_ends_at IS NOT NULL
		  AND subscription_ends_at < $1
		  AND status <> $2`, asOf, StatusExpired)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func (s *pgStore) ListUpdatedSince(ctx context.Context, since time.Time) ([]*Account, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, plan, status, trial_ends_at, subscription_started_at, subscription_ends_at, created_at, updated_at
		FROM accounts
		WHERE updated_at > $1`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAccounts(rows)
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	if err := row.Scan(&a.ID, &a.Plan, &a.Status, &a.TrialEndsAt, &a.SubscriptionStartedAt, &a.SubscriptionEndsAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAccounts(rows pgx.Rows) ([]*Account, error) {
	var out []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
