package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type runLog struct{ statuses []string }

func (r *runLog) JobProcessed(task, status string) { r.statuses = append(r.statuses, task+"="+status) }

type stubBalances struct {
	tb   reports.TrialBalance
	err  error
	asOf time.Time
}

func (s *stubBalances) TrialBalance(_ context.Context, asOf time.Time) (reports.TrialBalance, error) {
	s.asOf = asOf
	return s.tb, s.err
}

func balances(rows ...reports.AccountBalance) reports.TrialBalance {
	tb := reports.TrialBalance{Balances: map[uuid.UUID]reports.AccountBalance{}}
	for _, row := range rows {
		tb.Balances[row.Account.ID] = row
	}
	return tb
}

func row(typ accounts.AccountType, balance float64) reports.AccountBalance {
	return reports.AccountBalance{Account: accounts.Account{ID: uuid.New(), Code: uuid.NewString()[:4], Type: typ}, Balance: balance}
}

func TestIntegrityCheckPasses(t *testing.T) {
	runs := &runLog{}
	src := &stubBalances{tb: balances(
		row(accounts.AccountTypeAsset, 1500),
		row(accounts.AccountTypeExpense, 200),
		row(accounts.AccountTypeEquity, 1000),
		row(accounts.AccountTypeRevenue, 700),
	)}
	job := NewGLIntegrityJob(src, quiet, jobmetrics.NewMetrics(prometheus.NewRegistry(), runs))
	job.clock = func() time.Time { return time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC) }

	eq, err := job.Check(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.True(t, eq.Holds)
	assert.Equal(t, time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC), src.asOf)
	assert.Equal(t, []string{"ledger:integrity=ok"}, runs.statuses)
}

func TestIntegrityCheckFlagsImbalance(t *testing.T) {
	runs := &runLog{}
	src := &stubBalances{tb: balances(
		row(accounts.AccountTypeAsset, 1500),
		row(accounts.AccountTypeLiability, 1000),
	)}
	job := NewGLIntegrityJob(src, quiet, jobmetrics.NewMetrics(prometheus.NewRegistry(), runs))

	eq, err := job.Check(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrLedgerImbalanced)
	assert.False(t, eq.Holds)
	assert.Equal(t, []string{"ledger:integrity=failed"}, runs.statuses)

	task, err := NewLedgerIntegrityTask(time.Time{})
	require.NoError(t, err)
	assert.ErrorIs(t, job.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestIntegrityCheckPropagatesLoadErrors(t *testing.T) {
	boom := errors.New("boom")
	job := NewGLIntegrityJob(&stubBalances{err: boom}, quiet, nil)

	task, err := NewLedgerIntegrityTask(time.Now())
	require.NoError(t, err)
	err = job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

type stubBuilder struct {
	built    []reporting.Report
	from, to time.Time
	failOn   reporting.Report
}

func (s *stubBuilder) Build(_ context.Context, report reporting.Report, from, to time.Time) (json.RawMessage, error) {
	if report == s.failOn {
		return nil, errors.New("source down")
	}
	s.built = append(s.built, report)
	s.from, s.to = from, to
	return json.RawMessage(`{}`), nil
}

func TestReportsWarmupBuildsClosedWindows(t *testing.T) {
	builder := &stubBuilder{}
	job := NewReportsWarmupJob(builder, quiet, nil)
	job.clock = func() time.Time { return time.Date(2024, 3, 31, 1, 15, 0, 0, time.UTC) }

	task, err := NewReportsWarmupTask(7)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	var ranged []reporting.Report
	for _, r := range reporting.Reports {
		if r.Ranged() {
			ranged = append(ranged, r)
		}
	}
	assert.Equal(t, ranged, builder.built)
	assert.NotContains(t, builder.built, reporting.ReportInventory)
	assert.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), builder.from)
	assert.Equal(t, time.Date(2024, 3, 30, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), builder.to)
}

func TestReportsWarmupStopsOnFailure(t *testing.T) {
	builder := &stubBuilder{failOn: reporting.ReportPL}
	runs := &runLog{}
	job := NewReportsWarmupJob(builder, quiet, jobmetrics.NewMetrics(prometheus.NewRegistry(), runs))

	warmed, err := job.Warm(context.Background(), 0)
	assert.Error(t, err)
	assert.Equal(t, 1, warmed)
	assert.Equal(t, []string{"reports:warmup=failed"}, runs.statuses)
}

func TestWarmupPayloadDefaults(t *testing.T) {
	task, err := NewReportsWarmupTask(0)
	require.NoError(t, err)
	var payload ReportsWarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, DefaultWarmupDays, payload.Days)
	assert.Equal(t, TaskReportsWarmup, task.Type())
}

func TestRedisOpt(t *testing.T) {
	opt, err := RedisOpt("127.0.0.1:6379")
	require.NoError(t, err)
	assert.Equal(t, asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}, opt)

	opt, err = RedisOpt("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	client, ok := opt.(asynq.RedisClientOpt)
	require.True(t, ok)
	assert.Equal(t, "cache:6380", client.Addr)
	assert.Equal(t, 2, client.DB)

	_, err = RedisOpt("")
	assert.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestJobsHealth(t *testing.T) {
	serve := func(h *Handler) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Route("/jobs", h.MountRoutes)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
		return rr
	}

	rr := serve(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Retry: 1}}, quiet))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":3,"active":0,"scheduled":0,"retry":1}`, rr.Body.String())

	rr = serve(NewHandler(stubInspector{err: errors.New("redis down")}, quiet))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr = serve(NewHandler(nil, quiet))
	assert.Equal(t, http.StatusOK, rr.Code)
}
