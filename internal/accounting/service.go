// Package accounting assembles the double-entry ledger: the chart of
// accounts, journal posting and the balance calculator.
package accounting

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// Module groups the ledger services that share one set of stores.
type Module struct {
	Accounts   *accounts.Service
	Journals   *journals.Service
	Calculator *reports.Calculator
}

// New wires the ledger over PostgreSQL.
func New(pool *pgxpool.Pool) *Module {
	return NewModule(accounts.NewRepository(pool), journals.NewRepository(pool))
}

// NewModule wires the ledger over arbitrary stores.
func NewModule(accountStore accounts.Store, journalStore journals.Store) *Module {
	registry := accounts.NewService(accountStore)
	ledger := journals.NewService(journalStore, registry)
	return &Module{
		Accounts:   registry,
		Journals:   ledger,
		Calculator: reports.NewCalculator(registry, ledger),
	}
}
