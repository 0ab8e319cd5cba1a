package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Repository reads operational facts from PostgreSQL. It satisfies every
// store interface the engine needs.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the PostgreSQL-backed source stores.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Sources wires the repository into every operational slot of Sources.
func (r *Repository) Sources() Sources {
	return Sources{Sales: r, Expenses: r, Inventory: r, Products: r, Branches: r}
}

func (r *Repository) ListSales(ctx context.Context, rng shared.DateRange, branchID *uuid.UUID) ([]Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT id, branch_id, total_amount, payment_type, created_at
FROM sales
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at <= $2)
  AND ($3::uuid IS NULL OR branch_id = $3)
ORDER BY created_at`, nullTime(rng.From), nullTime(rng.To), branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		sales []Sale
		ids   []uuid.UUID
	)
	positions := make(map[uuid.UUID]int)
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.BranchID, &s.TotalAmount, &s.PaymentType, &s.CreatedAt); err != nil {
			return nil, err
		}
		positions[s.ID] = len(sales)
		ids = append(ids, s.ID)
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return sales, nil
	}

	items, err := r.db.Query(ctx, `SELECT sale_id, product_id, quantity, price
FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, line_no`, ids)
	if err != nil {
		return nil, err
	}
	defer items.Close()
	for items.Next() {
		var (
			saleID uuid.UUID
			item   SaleItem
		)
		if err := items.Scan(&saleID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		if pos, ok := positions[saleID]; ok {
			sales[pos].Items = append(sales[pos].Items, item)
		}
	}
	return sales, items.Err()
}

func (r *Repository) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	rows, err := r.db.Query(ctx, `SELECT id, branch_id, category, amount, date
FROM expenses
WHERE ($1::uuid IS NULL OR branch_id = $1)
  AND ($2::timestamptz IS NULL OR date >= $2)
  AND ($3::timestamptz IS NULL OR date <= $3)
ORDER BY date`, filter.BranchID, nullTime(filter.Range.From), nullTime(filter.Range.To))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var e Expense
		err := row.Scan(&e.ID, &e.BranchID, &e.Category, &e.Amount, &e.Date)
		return e, err
	})
}

func (r *Repository) ListAll(ctx context.Context) ([]InventoryItem, error) {
	rows, err := r.db.Query(ctx, `SELECT id, product_id, quantity, low_stock_at, location
FROM inventory_items ORDER BY product_id, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (InventoryItem, error) {
		var item InventoryItem
		err := row.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.LowStockAt, &item.Location)
		return item, err
	})
}

func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]BranchStock, error) {
	return r.branchStock(ctx, `WHERE product_id = $1`, productID)
}

func (r *Repository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]BranchStock, error) {
	return r.branchStock(ctx, `WHERE branch_id = $1`, branchID)
}

func (r *Repository) branchStock(ctx context.Context, where string, arg uuid.UUID) ([]BranchStock, error) {
	rows, err := r.db.Query(ctx, `SELECT branch_id, product_id, quantity FROM branch_stock `+where+` ORDER BY branch_id, product_id`, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (BranchStock, error) {
		var s BranchStock
		err := row.Scan(&s.BranchID, &s.ProductID, &s.Quantity)
		return s, err
	})
}

func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, sku, price, cost_price, category FROM products ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Product, error) {
		var p Product
		err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.CostPrice, &p.Category)
		return p, err
	})
}

func (r *Repository) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address, phone, email FROM branches ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Branch, error) {
		var b Branch
		err := row.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.Email)
		return b, err
	})
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
