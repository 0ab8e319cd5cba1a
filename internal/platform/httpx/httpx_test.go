package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{&shared.UnbalancedEntryError{TotalDebits: 100, TotalCredits: 90}, http.StatusUnprocessableEntity},
		{&shared.UnknownAccountError{AccountID: uuid.New()}, http.StatusUnprocessableEntity},
		{shared.Invalid("code", "required"), http.StatusBadRequest},
		{shared.NotFound("account", "x"), http.StatusNotFound},
		{shared.Source("list sales", errors.New("down")), http.StatusBadGateway},
		{fmt.Errorf("build: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	}
}

func TestDataSourceDetailIsHidden(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, shared.Source("list sales", errors.New("password authentication failed")))
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestQueryDate(t *testing.T) {
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r := httptest.NewRequest(http.MethodGet, "/?as_of=2024-03-31", nil)
	got, err := QueryDate(r, "as_of", fallback, true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), got)

	got, err = QueryDate(r, "from", fallback, false)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	r = httptest.NewRequest(http.MethodGet, "/?from=31-03-2024", nil)
	_, err = QueryDate(r, "from", fallback, false)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Code string `json:"code"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"1000","colour":"red"}`))
	assert.Error(t, DecodeJSON(r, &target))
}
