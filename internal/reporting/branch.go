package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BranchFinancials summarises one branch over a window.
type BranchFinancials struct {
	BranchID       uuid.UUID `json:"branch_id"`
	BranchName     string    `json:"branch_name"`
	Sales          float64   `json:"sales"`
	Expenses       float64   `json:"expenses"`
	NetIncome      float64   `json:"net_income"`
	InventoryValue float64   `json:"inventory_value"`
	ProfitMargin   float64   `json:"profit_margin"`
}

// BranchFinancialReport lists every branch in store order.
type BranchFinancialReport struct {
	Start    time.Time          `json:"start"`
	End      time.Time          `json:"end"`
	Branches []BranchFinancials `json:"branches"`
}

// BranchFinancials computes each branch concurrently. Expenses are fetched
// per branch and narrowed to the window after the fetch.
func (e *Engine) BranchFinancials(ctx context.Context, start, end time.Time) (BranchFinancialReport, error) {
	rng, err := window(start, end)
	if err != nil {
		return BranchFinancialReport{}, err
	}
	branches, err := e.src.Branches.ListBranches(ctx)
	if err != nil {
		return BranchFinancialReport{}, fetchFailed("list branches", err)
	}
	products, err := e.src.Products.ListProducts(ctx)
	if err != nil {
		return BranchFinancialReport{}, fetchFailed("list products", err)
	}
	idx := indexProducts(products)

	results := make([]BranchFinancials, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, branch := range branches {
		g.Go(func() error {
			branchID := branch.ID
			row := BranchFinancials{BranchID: branch.ID, BranchName: branch.Name}

			sales, err := e.src.Sales.ListSales(gctx, rng, &branchID)
			if err != nil {
				return fetchFailed("list branch sales", err)
			}
			for _, sale := range sales {
				row.Sales += sale.TotalAmount
			}

			expenses, err := e.src.Expenses.ListExpenses(gctx, ExpenseFilter{BranchID: &branchID})
			if err != nil {
				return fetchFailed("list branch expenses", err)
			}
			for _, expense := range expenses {
				if rng.Contains(expense.Date) {
					row.Expenses += expense.Amount
				}
			}

			stock, err := e.src.Inventory.ListByBranch(gctx, branchID)
			if err != nil {
				return fetchFailed("list branch inventory", err)
			}
			row.InventoryValue = idx.stockValue(stock)

			row.NetIncome = row.Sales - row.Expenses
			if row.Sales > 0 {
				row.ProfitMargin = row.NetIncome / row.Sales * 100
			}
			results[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BranchFinancialReport{}, err
	}
	return BranchFinancialReport{Start: start, End: end, Branches: results}, nil
}
