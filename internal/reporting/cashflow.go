package reporting

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// CashFlowReport reconciles cash movement over a window.
type CashFlowReport struct {
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	BeginningBalance float64   `json:"beginning_balance"`
	CashInflow       float64   `json:"cash_inflow"`
	CashOutflow      float64   `json:"cash_outflow"`
	NetChange        float64   `json:"net_change"`
	EndingBalance    float64   `json:"ending_balance"`
}

// OpeningBalanceSource supplies the cash position at the start of a window.
type OpeningBalanceSource interface {
	OpeningBalance(ctx context.Context, start time.Time) (float64, error)
}

// ZeroOpening reports a zero beginning balance.
type ZeroOpening struct{}

func (ZeroOpening) OpeningBalance(context.Context, time.Time) (float64, error) { return 0, nil }

// TrialBalancer computes trial balances.
type TrialBalancer interface {
	TrialBalance(ctx context.Context, asOf time.Time) (reports.TrialBalance, error)
}

// CashAccountOpening sums the ledger balances of the configured cash
// accounts as of the instant before the window starts.
type CashAccountOpening struct {
	Balances TrialBalancer
	Codes    []string
}

func (c CashAccountOpening) OpeningBalance(ctx context.Context, start time.Time) (float64, error) {
	if len(c.Codes) == 0 {
		return 0, nil
	}
	tb, err := c.Balances.TrialBalance(ctx, start.Add(-time.Nanosecond))
	if err != nil {
		return 0, err
	}
	wanted := make(map[string]bool, len(c.Codes))
	for _, code := range c.Codes {
		wanted[strings.TrimSpace(code)] = true
	}
	var total float64
	for _, row := range tb.Balances {
		if wanted[row.Account.Code] {
			total += row.Balance
		}
	}
	return total, nil
}

// CashFlow treats CASH sales as inflow and every expense in the window as
// cash outflow.
func (e *Engine) CashFlow(ctx context.Context, start, end time.Time) (CashFlowReport, error) {
	rng, err := window(start, end)
	if err != nil {
		return CashFlowReport{}, err
	}

	var (
		sales    []Sale
		expenses []Expense
		opening  float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = e.src.Sales.ListSales(gctx, rng, nil)
		return fetchFailed("list sales", err)
	})
	g.Go(func() error {
		var err error
		expenses, err = e.src.Expenses.ListExpenses(gctx, ExpenseFilter{Range: rng})
		return fetchFailed("list expenses", err)
	})
	g.Go(func() error {
		var err error
		opening, err = e.opening.OpeningBalance(gctx, start)
		return fetchFailed("opening balance", err)
	})
	if err := g.Wait(); err != nil {
		return CashFlowReport{}, err
	}

	report := CashFlowReport{Start: start, End: end, BeginningBalance: opening}
	for _, sale := range sales {
		if sale.PaymentType == PaymentCash {
			report.CashInflow += sale.TotalAmount
		}
	}
	for _, expense := range expenses {
		report.CashOutflow += expense.Amount
	}
	report.NetChange = report.CashInflow - report.CashOutflow
	report.EndingBalance = report.BeginningBalance + report.NetChange
	return report, nil
}
