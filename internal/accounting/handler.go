package accounting

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// Handler wires ledger endpoints.
type Handler struct {
	accounts *accounts.Handler
	journals *journals.Handler
	reports  *reports.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, module *Module) *Handler {
	return &Handler{
		accounts: accounts.NewHandler(logger, module.Accounts),
		journals: journals.NewHandler(logger, module.Journals),
		reports:  reports.NewHandler(logger, module.Calculator),
	}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", h.accounts.MountRoutes)
	r.Route("/journals", h.journals.MountRoutes)
	h.reports.MountRoutes(r)
}
