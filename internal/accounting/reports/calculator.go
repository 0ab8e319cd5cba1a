// Package reports computes point-in-time balances by replaying posted
// journal entries against the chart of accounts.
package reports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// AccountLister lists the chart of accounts.
type AccountLister interface {
	List(ctx context.Context) ([]accounts.Account, error)
}

// EntryLister lists posted entries with their lines.
type EntryLister interface {
	List(ctx context.Context, rng shared.DateRange) ([]journals.JournalEntry, error)
}

// Calculator replays the ledger into balances.
type Calculator struct {
	accounts AccountLister
	entries  EntryLister
}

// NewCalculator constructs a balance calculator.
func NewCalculator(accounts AccountLister, entries EntryLister) *Calculator {
	return &Calculator{accounts: accounts, entries: entries}
}

// TrialBalance returns every known account's balance including all entries
// dated on or before asOf. Lines against accounts missing from the chart
// are ignored.
func (c *Calculator) TrialBalance(ctx context.Context, asOf time.Time) (TrialBalance, error) {
	chart, err := c.accounts.List(ctx)
	if err != nil {
		return TrialBalance{}, shared.Source("list accounts", err)
	}
	entries, err := c.entries.List(ctx, shared.UpTo(asOf))
	if err != nil {
		return TrialBalance{}, shared.Source("list journal entries", err)
	}
	return Replay(asOf, chart, entries), nil
}

// BalanceSheet builds the statement of financial position as of asOf.
func (c *Calculator) BalanceSheet(ctx context.Context, asOf time.Time) (BalanceSheet, error) {
	tb, err := c.TrialBalance(ctx, asOf)
	if err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(tb), nil
}

// Replay accumulates entries into a trial balance. Entries dated after asOf
// are skipped whole; the order of entries does not matter.
func Replay(asOf time.Time, chart []accounts.Account, entries []journals.JournalEntry) TrialBalance {
	balances := make(map[uuid.UUID]*AccountBalance, len(chart))
	for _, acc := range chart {
		balances[acc.ID] = &AccountBalance{Account: acc}
	}
	for _, entry := range entries {
		if entry.Date.After(asOf) {
			continue
		}
		for _, line := range entry.Lines {
			if row, ok := balances[line.AccountID]; ok {
				row.apply(line.Debit, line.Credit)
			}
		}
	}
	tb := TrialBalance{AsOf: asOf, Balances: make(map[uuid.UUID]AccountBalance, len(balances))}
	for id, row := range balances {
		tb.Balances[id] = *row
	}
	return tb
}
