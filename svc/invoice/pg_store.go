package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Cachi0001/Biz-sub002/pkg/pg"
)

// pgStore is the PostgreSQL-backed invoice store. Line items live in a child
// table and are replaced wholesale on save; invoices are small enough that
// diffing items is not worth the complexity.
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store backed by the invoices and invoice_items tables.
func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) q(ctx context.Context) pg.Querier {
	return pg.QuerierFromContext(ctx, s.pool)
}

func (s *pgStore) Get(ctx context.Context, accountID, id uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, account_id, customer_name, status, total_amount, total_cost,
		       inventory_committed, due_at, paid_at, created_at, updated_at
		FROM invoices
		WHERE id = $1 AND account_id = $2`, id, accountID).
		Scan(&inv.ID, &inv.AccountID, &inv.CustomerName, &inv.Status, &inv.TotalAmount, &inv.TotalCost,
			&inv.InventoryCommitted, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}

	if err := s.loadItems(ctx, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *pgStore) loadItems(ctx context.Context, inv *Invoice) error {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT product_id, name, quantity, unit_price, unit_cost
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position`, inv.ID)
	if err != nil {
		return err
	}

	inv.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (LineItem, error) {
		var it LineItem
		err := row.Scan(&it.ProductID, &it.Name, &it.Quantity, &it.UnitPrice, &it.UnitCost)
		return it, err
	})
	return err
}

func (s *pgStore) Save(ctx context.Context, inv *Invoice) error {
	return pg.NewTransactor(s.pool).WithinTx(ctx, func(ctx context.Context) error {
		q := s.q(ctx)

		_, err := q.Exec(ctx, `
			INSERT INTO invoices (id, account_id, customer_name, status, total_amount, total_cost,
			                      inventory_committed, due_at, paid_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				customer_name = EXCLUDED.customer_name,
				status = EXCLUDED.status,
				total_amount = EXCLUDED.total_amount,
				total_cost = EXCLUDED.total_cost,
				inventory_committed = EXCLUDED.inventory_committed,
				due_at = EXCLUDED.due_at,
				paid_at = EXCLUDED.paid_at,
				updated_at = EXCLUDED.updated_at`,
			inv.ID, inv.AccountID, inv.CustomerName, inv.Status, inv.TotalAmount, inv.TotalCost,
			inv.InventoryCommitted, inv.DueAt, inv.PaidAt, inv.CreatedAt, inv.UpdatedAt)
		if err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return err
		}

		for i, it := range inv.Items {
			_, err := q.Exec(ctx, `
				INSERT INTO invoice_items (invoice_id, position, product_id, name, quantity, unit_price, unit_cost)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				inv.ID, i, it.ProductID, it.Name, it.Quantity, it.UnitPrice, it.UnitCost)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *pgStore) ListOverdueCandidates(ctx context.Context, asOf time.Time) ([]*Invoice, error) {
	rows, err := s.q(ctx).Query(ctx, `
		SELECT id, account_id, customer_name, status, total_amount, total_cost,
		       inventory_committed, due_at, paid_at, created_at, updated_at
		FROM invoices
		WHERE status = $1 AND due_at IS NOT NULL AND due_at < $2
		ORDER BY due_at`, StatusSent, asOf.UTC())
	if err != nil {
		return nil, err
	}

	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Invoice, error) {
		var inv Invoice
		err := row.Scan(&inv.ID, &inv.AccountID, &inv.CustomerName, &inv.Status, &inv.TotalAmount, &inv.TotalCost,
			&inv.InventoryCommitted, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
		return &inv, err
	})
	if err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if err := s.loadItems(ctx, inv); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (s *pgStore) CountCreatedInPeriod(ctx context.Context, accountID uuid.UUID, start, end time.Time) (int64, error) {
	var n int64
	err := s.q(ctx).QueryRow(ctx, `
		SELECT count(*) FROM invoices
		WHERE account_id = $1 AND created_at >= $2 AND created_at < $3`,
		accountID, start.UTC(), end.UTC()).Scan(&n)
	return n, err
}
