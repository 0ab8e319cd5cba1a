package reporting

import (
	"errors"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// DefaultConcurrency bounds the per-branch and per-product fan-out.
const DefaultConcurrency = 8

// Sources bundles the collaborators the engine reads from.
type Sources struct {
	Sales     SalesStore
	Expenses  ExpenseStore
	Inventory InventoryStore
	Products  ProductStore
	Branches  BranchStore
	Accounts  reports.AccountLister
	Entries   reports.EntryLister
}

// Engine builds reports. It keeps no state between calls.
type Engine struct {
	src         Sources
	opening     OpeningBalanceSource
	concurrency int
}

// NewEngine constructs a reporting engine with a zero cash opening balance.
func NewEngine(src Sources) *Engine {
	return &Engine{src: src, opening: ZeroOpening{}, concurrency: DefaultConcurrency}
}

// WithOpening sets where the cash flow beginning balance comes from.
func (e *Engine) WithOpening(src OpeningBalanceSource) *Engine {
	if src != nil {
		e.opening = src
	}
	return e
}

// WithConcurrency bounds parallel collaborator calls.
func (e *Engine) WithConcurrency(n int) *Engine {
	if n > 0 {
		e.concurrency = n
	}
	return e
}

func window(start, end time.Time) (shared.DateRange, error) {
	rng := shared.Between(start, end)
	if start.IsZero() || end.IsZero() {
		return rng, shared.Invalid("range", "start and end are required")
	}
	return rng, rng.Validate()
}

// fetchFailed wraps any collaborator error, classified or not, so a report
// fails as a whole with ErrDataSource.
func fetchFailed(op string, err error) error {
	if err == nil || errors.Is(err, shared.ErrDataSource) {
		return err
	}
	return &shared.DataSourceError{Op: op, Err: err}
}
