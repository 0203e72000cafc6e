package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
)

// pgStore is the PostgreSQL-backed sale store. Sales are insert-only; there
// is no update path.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the sales and sale_items tables.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Get(ctx context.Context, accountID, id uuid.UUID) (*Sale, error) {
	var sale Sale
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, account_id, total_amount, total_cost, payment_method, created_at
		FROM sales
		WHERE id = $1 AND account_id = $2`, id, accountID).
		Scan(&sale.ID, &sale.AccountID, &sale.TotalAmount, &sale.TotalCost, &sale.PaymentMethod, &sale.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	rows, err := s.q(ctx).Query(ctx, `
		SELECT product_id, name, quantity, unit_price, unit_cost
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY position`, sale.ID)
	if err != nil {
		return nil, err
	}

	sale.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (SaleItem, error) {
		var it SaleItem
		err := row.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice, &it.UnitCost)
		return it, err
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *pgStore) Save(ctx context.Context, sale *Sale) error {
	return pg.NewTransactor(s.pool).WithinTx(ctx, func(ctx context.Context) error {
		q := s.q(ctx)

		_, err := q.Exec(ctx, `
			INSERT INTO sales (id, account_id, total_amount, total_cost, payment_method, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			sale.ID, sale.AccountID, sale.TotalAmount, sale.TotalCost, sale.PaymentMethod, sale.CreatedAt)
		if err != nil {
			return err
		}

		for i, it := range sale.Items {
			_, err := q.Exec(ctx, `
				INSERT INTO sale_items (sale_id, position, product_id, name, quantity, unit_price, unit_cost)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				sale.ID, i, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.UnitCost)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	err := s.q(ctx).QueryRow(ctx, `
		SELECT count(*) FROM sales
		WHERE account_id = $1 AND created_at >= $2 AND created_at < $3`,
		accountID, start.UTC(), end.UTC()).Scan(&n)
	return n, err
}
