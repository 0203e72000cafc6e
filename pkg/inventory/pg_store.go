package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
)

// pgStore is the PostgreSQL-backed product store. Stock decrements are
// conditional updates (quantity_on_hand >= requested), so the non-negative
// invariant holds under concurrent commits without application locks.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the products table.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, account_id, name, unit_price, unit_cost, quantity_on_hand, created_at, updated_at
		FROM products
		WHERE id = $1`, id).
		Scan(&p.ID, &p.AccountID, &p.Name, &p.UnitPrice, &p.UnitCost, &p.QuantityOnHand, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *pgStore) Save(ctx context.Context, p *Product) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO products (id, account_id, name, unit_price, unit_cost, quantity_on_hand, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			unit_price = EXCLUDED.unit_price,
			unit_cost = EXCLUDED.unit_cost,
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.AccountID, p.Name, p.UnitPrice, p.UnitCost, p.QuantityOnHand, p.CreatedAt, p.UpdatedAt)
	return err
}

// Commit runs inside one transaction: each decrement is conditional on
// sufficient stock, and the first failed condition triggers a full recheck
// that gathers every shortfall before rolling everything back.
func (s *pgStore) Commit(ctx context.Context, accountID uuid.UUID, items []Item) error {
	if err := validateItems(items); err != nil {
		return err
	}

	return pg.NewTransactor(s.pool).WithinTx(ctx, func(ctx context.Context) error {
		q := s.q(ctx)

		short := false
		for _, it := range items {
			tag, err := q.Exec(ctx, `
				UPDATE products
				SET quantity_on_hand = quantity_on_hand - $3, updated_at = now()
				WHERE id = $1 AND account_id = $2 AND quantity_on_hand >= $3`,
				it.ProductID, accountID, it.Quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				short = true
				break
			}
		}
		if !short {
			return nil
		}

		// At least one item failed: collect every shortfall for the error
		// detail, then abort the transaction to undo the partial decrements.
		shortfalls, err := s.collectShortfalls(ctx, accountID, items)
		if err != nil {
			return err
		}
		return &InsufficientStockError{Shortfalls: shortfalls}
	})
}

func (s *pgStore) collectShortfalls(ctx context.Context, accountID uuid.UUID, items []Item) ([]Shortfall, error) {
	// The surrounding transaction is aborted either way, so reading the
	// pre-transaction quantities from a fresh pool connection is fine here.
	var shortfalls []Shortfall
	for _, it := range items {
		var available int64
		err := s.pool.QueryRow(ctx, `
			SELECT quantity_on_hand FROM products WHERE id = $1 AND account_id = $2`,
			it.ProductID, accountID).Scan(&available)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
			}
			return nil, err
		}
		if available < it.Quantity {
			shortfalls = append(shortfalls, Shortfall{
				ProductID: it.ProductID,
				Requested: it.Quantity,
				Available: available,
			})
		}
	}
	return shortfalls, nil
}

func (s *pgStore) Release(ctx context.Context, accountID uuid.UUID, items []Item) error {
	if err := validateItems(items); err != nil {
		return err
	}

	return pg.NewTransactor(s.pool).WithinTx(ctx, func(ctx context.Context) error {
		q := s.q(ctx)
		for _, it := range items {
			tag, err := q.Exec(ctx, `
				UPDATE products
				SET quantity_on_hand = quantity_on_hand + $3, updated_at = now()
				WHERE id = $1 AND account_id = $2`,
				it.ProductID, accountID, it.Quantity)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s", ErrProductNotFound, it.ProductID)
			}
		}
		return nil
	})
}

func (s *pgStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	err := s.q(ctx).QueryRow(ctx, `
		SELECT count(*) FROM products
		WHERE account_id = $1 AND created_at >= $2 AND created_at < $3`,
		accountID, start.UTC(), end.UTC()).Scan(&n)
	return n, err
}
