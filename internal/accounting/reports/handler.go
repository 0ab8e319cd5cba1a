package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

type Handler struct {
	calculator *Calculator
	logger     *slog.Logger
	now        func() time.Time
}

func NewHandler(logger *slog.Logger, calculator *Calculator) *Handler {
	return &Handler{logger: logger, calculator: calculator, now: time.Now}
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := httpx.QueryDate(r, "as_of", h.now().UTC(), true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tb, err := h.calculator.TrialBalance(r.Context(), asOf)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewTrialBalanceView(tb))
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := httpx.QueryDate(r, "as_of", h.now().UTC(), true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bs, err := h.calculator.BalanceSheet(r.Context(), asOf)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
}
