package reporting

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ExpenseCategoryReport totals expenses per category.
type ExpenseCategoryReport struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	BranchID   *uuid.UUID    `json:"branch_id,omitempty"`
	Total      float64       `json:"total"`
	ByCategory []ExpenseLine `json:"by_category"`
}

// ExpensesByCategory sums expense amounts by category inside the window.
// Categories keep the order in which the store first returns them. A nil
// branchID spans every branch.
func (e *Engine) ExpensesByCategory(ctx context.Context, branchID *uuid.UUID, start, end time.Time) (ExpenseCategoryReport, error) {
	rng, err := window(start, end)
	if err != nil {
		return ExpenseCategoryReport{}, err
	}
	expenses, err := e.src.Expenses.ListExpenses(ctx, ExpenseFilter{BranchID: branchID, Range: rng})
	if err != nil {
		return ExpenseCategoryReport{}, fetchFailed("list expenses", err)
	}

	report := ExpenseCategoryReport{Start: start, End: end, BranchID: branchID, ByCategory: []ExpenseLine{}}
	positions := make(map[string]int)
	for _, expense := range expenses {
		if !rng.Contains(expense.Date) {
			continue
		}
		pos, seen := positions[expense.Category]
		if !seen {
			pos = len(report.ByCategory)
			positions[expense.Category] = pos
			report.ByCategory = append(report.ByCategory, ExpenseLine{Category: expense.Category})
		}
		report.ByCategory[pos].Amount += expense.Amount
		report.Total += expense.Amount
	}
	return report, nil
}
