package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

type memAccounts struct {
	mu   sync.Mutex
	rows []accounts.Account
}

func (m *memAccounts) Insert(_ context.Context, a accounts.Account) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Code == a.Code {
			return accounts.Account{}, shared.Invalid("code", "duplicate")
		}
	}
	m.rows = append(m.rows, a)
	return a, nil
}

func (m *memAccounts) List(context.Context) ([]accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]accounts.Account(nil), m.rows...), nil
}

func (m *memAccounts) GetByID(_ context.Context, id uuid.UUID) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return accounts.Account{}, shared.NotFound("account", id.String())
}

func (m *memAccounts) GetByCode(_ context.Context, code string) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Code == code {
			return row, nil
		}
	}
	return accounts.Account{}, shared.NotFound("account", code)
}

type memJournals struct {
	mu      sync.Mutex
	seq     int
	entries []journals.JournalEntry
}

func (m *memJournals) InsertEntry(_ context.Context, header journals.JournalEntry, lines []journals.JournalLine) (journals.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	header.Lines = lines
	m.entries = append(m.entries, header)
	return header, nil
}

func (m *memJournals) GetByID(_ context.Context, id uuid.UUID) (journals.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.NotFound("journal entry", id.String())
}

func (m *memJournals) ListByDateRange(_ context.Context, rng shared.DateRange) ([]journals.JournalEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journals.JournalEntry
	for _, e := range m.entries {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memJournals) NextEntryNumber(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("JE-%06d", m.seq), nil
}

type ledgerAPI struct {
	t      *testing.T
	router http.Handler
}

func newLedgerAPI(t *testing.T) *ledgerAPI {
	module := NewModule(&memAccounts{}, &memJournals{})
	r := chi.NewRouter()
	r.Route("/accounting", NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), module).MountRoutes)
	return &ledgerAPI{t: t, router: r}
}

func (a *ledgerAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func (a *ledgerAPI) createAccount(code, name string, typ accounts.AccountType) accounts.Account {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/accounting/accounts", map[string]any{"code": code, "name": name, "type": typ})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	var acc accounts.Account
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &acc))
	return acc
}

func journalBody(date string, header uuid.UUID, debit, credit uuid.UUID, dr, cr float64) map[string]any {
	return map[string]any{
		"date":       date,
		"account_id": header.String(),
		"lines": []map[string]any{
			{"account_id": debit.String(), "debit": dr},
			{"account_id": credit.String(), "credit": cr},
		},
	}
}

func TestLedgerEndToEnd(t *testing.T) {
	api := newLedgerAPI(t)
	cash := api.createAccount("1100", "Cash", accounts.AccountTypeAsset)
	capital := api.createAccount("3100", "Capital", accounts.AccountTypeEquity)
	sales := api.createAccount("4100", "Sales", accounts.AccountTypeRevenue)

	rr := api.do(http.MethodPost, "/accounting/journals", journalBody("2024-03-01", cash.ID, cash.ID, capital.ID, 1000, 1000))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var opening journals.JournalEntry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &opening))
	assert.Equal(t, "JE-000001", opening.EntryNumber)

	rr = api.do(http.MethodPost, "/accounting/journals", journalBody("2024-03-05", cash.ID, cash.ID, sales.ID, 250, 250))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.do(http.MethodGet, "/accounting/trial-balance?as_of=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var view reports.TrialBalanceView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	require.Len(t, view.Rows, 3)
	assert.InDelta(t, 1250, view.Rows[0].Balance, 1e-9)
	assert.True(t, view.Equation.Holds)

	rr = api.do(http.MethodGet, "/accounting/balance-sheet?as_of=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var bs reports.BalanceSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bs))
	assert.True(t, bs.Balanced)

	rr = api.do(http.MethodPost, "/accounting/journals/"+opening.ID.String()+"/reverse", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = api.do(http.MethodGet, "/accounting/journals?from=2024-03-01&to=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed struct {
		Entries []journals.JournalEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed.Entries, 3)
	assert.Equal(t, "REV:JE-000001", *listed.Entries[1].Reference)

	rr = api.do(http.MethodGet, "/accounting/trial-balance?as_of=2024-03-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.InDelta(t, 250, view.Rows[0].Balance, 1e-9)
}

func TestLedgerRejectsBadPostings(t *testing.T) {
	api := newLedgerAPI(t)
	cash := api.createAccount("1100", "Cash", accounts.AccountTypeAsset)
	sales := api.createAccount("4100", "Sales", accounts.AccountTypeRevenue)

	rr := api.do(http.MethodPost, "/accounting/journals", journalBody("2024-03-01", cash.ID, cash.ID, sales.ID, 100, 90))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = api.do(http.MethodPost, "/accounting/journals", journalBody("2024-03-01", cash.ID, cash.ID, uuid.New(), 100, 100))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = api.do(http.MethodPost, "/accounting/journals", journalBody("03/01/2024", cash.ID, cash.ID, sales.ID, 100, 100))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodGet, "/accounting/journals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(http.MethodPost, "/accounting/accounts", map[string]any{"code": "1100", "name": "Again", "type": "ASSET"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
