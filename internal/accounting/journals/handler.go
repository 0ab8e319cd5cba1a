package journals

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

type postLineRequest struct {
	AccountID   string  `json:"account_id" validate:"required,uuid"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
	Debit       float64 `json:"debit" validate:"gte=0"`
	Credit      float64 `json:"credit" validate:"gte=0"`
}

type postRequest struct {
	EntryNumber string            `json:"entry_number" validate:"omitempty,max=32"`
	Date        string            `json:"date" validate:"required,datetime=2006-01-02"`
	Description *string           `json:"description,omitempty" validate:"omitempty,max=255"`
	Reference   *string           `json:"reference,omitempty" validate:"omitempty,max=64"`
	AccountID   string            `json:"account_id" validate:"required,uuid"`
	Lines       []postLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseRequest struct {
	EntryNumber string  `json:"entry_number" validate:"omitempty,max=32"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// Handler exposes the ledger over JSON.
type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	from, err := httpx.QueryDate(r, "from", time.Time{}, false)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.QueryDate(r, "to", time.Time{}, true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), shared.Between(from, to))
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.Invalid("id", "must be a uuid"))
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Invalid("body", "malformed json"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fieldFailure(err))
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Post(r.Context(), input)
	if err != nil {
		h.logger.Warn("post journal", slog.String("entry_number", req.EntryNumber), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("journal posted", slog.String("entry_number", entry.EntryNumber), slog.Float64("total", entry.TotalDebits))
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.Invalid("id", "must be a uuid"))
		return
	}
	var req reverseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.RespondError(w, shared.Invalid("body", "malformed json"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fieldFailure(err))
		return
	}
	input := ReverseInput{EntryID: id, EntryNumber: req.EntryNumber, Description: req.Description}
	if req.Date != "" {
		date, _ := time.ParseInLocation(httpx.DateLayout, req.Date, time.UTC)
		input.Date = &date
	}
	entry, err := h.service.Reverse(r.Context(), input)
	if err != nil {
		h.logger.Warn("reverse journal", slog.String("id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (req postRequest) toInput() (PostingInput, error) {
	date, err := time.ParseInLocation(httpx.DateLayout, req.Date, time.UTC)
	if err != nil {
		return PostingInput{}, shared.Invalid("date", "expected YYYY-MM-DD")
	}
	input := PostingInput{
		EntryNumber: req.EntryNumber,
		Date:        date,
		Description: req.Description,
		Reference:   req.Reference,
		AccountID:   uuid.MustParse(req.AccountID),
		Lines:       make([]PostingLineInput, 0, len(req.Lines)),
	}
	for _, line := range req.Lines {
		input.Lines = append(input.Lines, PostingLineInput{
			AccountID:   uuid.MustParse(line.AccountID),
			Description: line.Description,
			Debit:       line.Debit,
			Credit:      line.Credit,
		})
	}
	return input, nil
}

func fieldFailure(err error) error {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return shared.Invalid("", err.Error())
	}
	fe := fieldErrs[0]
	return shared.Invalid(fe.Namespace(), "failed "+fe.Tag()+" rule")
}
