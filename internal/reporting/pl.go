package reporting

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// ExpenseLine is the expense total posted to accounts of one name.
type ExpenseLine struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// ProfitAndLoss combines sales revenue with expenses posted to the ledger.
type ProfitAndLoss struct {
	Start      time.Time     `json:"start"`
	End        time.Time     `json:"end"`
	Revenue    float64       `json:"revenue"`
	Expenses   float64       `json:"expenses"`
	NetIncome  float64       `json:"net_income"`
	ByCategory []ExpenseLine `json:"by_category"`
}

// ProfitAndLoss uses total sales as revenue and the debits posted to
// EXPENSE accounts inside the window as expenses.
func (e *Engine) ProfitAndLoss(ctx context.Context, start, end time.Time) (ProfitAndLoss, error) {
	rng, err := window(start, end)
	if err != nil {
		return ProfitAndLoss{}, err
	}

	var (
		sales   SalesReport
		chart   []accounts.Account
		entries []journals.JournalEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = e.SalesReport(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = e.src.Accounts.List(gctx)
		return fetchFailed("list accounts", err)
	})
	g.Go(func() error {
		var err error
		entries, err = e.src.Entries.List(gctx, rng)
		return fetchFailed("list journal entries", err)
	})
	if err := g.Wait(); err != nil {
		return ProfitAndLoss{}, err
	}

	expenses, byCategory := postedExpenses(rng, entries, chart)
	return ProfitAndLoss{
		Start:      start,
		End:        end,
		Revenue:    sales.TotalSales,
		Expenses:   expenses,
		NetIncome:  sales.TotalSales - expenses,
		ByCategory: byCategory,
	}, nil
}

func postedExpenses(rng shared.DateRange, entries []journals.JournalEntry, chart []accounts.Account) (float64, []ExpenseLine) {
	idx := indexAccounts(chart)
	perName := make(map[string]float64)
	var total float64
	for _, entry := range entries {
		if !rng.Contains(entry.Date) {
			continue
		}
		for _, line := range entry.Lines {
			acc, ok := idx[line.AccountID]
			if !ok || acc.Type != accounts.AccountTypeExpense {
				continue
			}
			total += line.Debit
			perName[acc.Name] += line.Debit
		}
	}
	lines := make([]ExpenseLine, 0, len(perName))
	for name, amount := range perName {
		lines = append(lines, ExpenseLine{Category: name, Amount: amount})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Category < lines[j].Category })
	return total, lines
}
