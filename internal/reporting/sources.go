// Package reporting derives business reports by combining ledger data with
// sales, expense and inventory facts read from external stores.
package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// PaymentCash marks sales settled in cash; only these count as cash inflow.
const PaymentCash = "CASH"

// Sale is a completed point-of-sale transaction.
type Sale struct {
	ID          uuid.UUID  `json:"id"`
	BranchID    uuid.UUID  `json:"branch_id"`
	TotalAmount float64    `json:"total_amount"`
	PaymentType string     `json:"payment_type"`
	CreatedAt   time.Time  `json:"created_at"`
	Items       []SaleItem `json:"items"`
}

// SaleItem is one product line of a sale, priced at sale time.
type SaleItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
}

// Expense is a branch expenditure.
type Expense struct {
	ID       uuid.UUID `json:"id"`
	BranchID uuid.UUID `json:"branch_id"`
	Category string    `json:"category"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
}

// InventoryItem is a tracked stock line with its reorder threshold.
type InventoryItem struct {
	ID         uuid.UUID `json:"id"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	LowStockAt int       `json:"low_stock_at"`
	Location   *string   `json:"location,omitempty"`
}

// BranchStock is the quantity of one product held at one branch.
type BranchStock struct {
	BranchID  uuid.UUID `json:"branch_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Product is a sellable item.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Price     float64   `json:"price"`
	CostPrice float64   `json:"cost_price"`
	Category  string    `json:"category"`
}

// Branch is a grouping key for branch-scoped reports.
type Branch struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address,omitempty"`
	Phone   *string   `json:"phone,omitempty"`
	Email   *string   `json:"email,omitempty"`
}

// ExpenseFilter narrows an expense listing. A nil BranchID spans all branches.
type ExpenseFilter struct {
	BranchID *uuid.UUID
	Range    shared.DateRange
}

// SalesStore lists sales created inside rng, optionally for one branch.
type SalesStore interface {
	ListSales(ctx context.Context, rng shared.DateRange, branchID *uuid.UUID) ([]Sale, error)
}

// ExpenseStore lists expenses.
type ExpenseStore interface {
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
}

// InventoryStore reads stock positions.
type InventoryStore interface {
	ListAll(ctx context.Context) ([]InventoryItem, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]BranchStock, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]BranchStock, error)
}

// ProductStore lists the product catalogue.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]Product, error)
}

// BranchStore lists branches.
type BranchStore interface {
	ListBranches(ctx context.Context) ([]Branch, error)
}
