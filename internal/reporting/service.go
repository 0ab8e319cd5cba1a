package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Report names a report the engine can build.
type Report string

const (
	ReportSales     Report = "sales"
	ReportInventory Report = "inventory"
	ReportPL        Report = "pl"
	ReportCashFlow  Report = "cashflow"
	ReportBranches  Report = "branches"
	ReportTurnover  Report = "inventory-turnover"
	ReportExpenses  Report = "expenses"
)

// Reports lists every report in display order.
var Reports = []Report{ReportSales, ReportInventory, ReportPL, ReportCashFlow, ReportBranches, ReportTurnover, ReportExpenses}

// ParseReport resolves a report name.
func ParseReport(name string) (Report, bool) {
	for _, r := range Reports {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

// Ranged reports whether the report takes a date window.
func (r Report) Ranged() bool { return r != ReportInventory }

// Observer receives build timings and cache outcomes.
type Observer interface {
	ObserveReportBuild(report string, d time.Duration)
	RecordCache(report string, hit bool)
}

// Service fronts the engine with the versioned Redis cache.
type Service struct {
	engine   *Engine
	cache    *Cache
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the cache in front of engine. cache may be nil.
func NewService(engine *Engine, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{engine: engine, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithObserver registers a metrics observer.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Generate builds a report straight from the sources.
func (s *Service) Generate(ctx context.Context, report Report, from, to time.Time) (any, error) {
	start := time.Now()
	var (
		value any
		err   error
	)
	switch report {
	case ReportSales:
		value, err = s.engine.SalesReport(ctx, from, to)
	case ReportInventory:
		value, err = s.engine.InventoryReport(ctx)
	case ReportPL:
		value, err = s.engine.ProfitAndLoss(ctx, from, to)
	case ReportCashFlow:
		value, err = s.engine.CashFlow(ctx, from, to)
	case ReportBranches:
		value, err = s.engine.BranchFinancials(ctx, from, to)
	case ReportTurnover:
		value, err = s.engine.InventoryTurnover(ctx, from, to)
	case ReportExpenses:
		value, err = s.engine.ExpensesByCategory(ctx, nil, from, to)
	default:
		return nil, shared.Invalid("report", "unknown report "+string(report))
	}
	if err != nil {
		return nil, err
	}
	if s.observer != nil {
		s.observer.ObserveReportBuild(string(report), time.Since(start))
	}
	return value, nil
}

// Cacheable reports whether a build may be served from cache: only windows
// that ended before today (UTC). Sales, expenses and stock keep changing for
// the current day and never bump the cache, so open windows and the
// inventory snapshot are always read from the sources. Closed windows are
// still invalidated by journal posts.
func (s *Service) Cacheable(report Report, to time.Time) bool {
	if !report.Ranged() {
		return false
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	return to.Before(today)
}

// Build returns the report as JSON, served from cache when the window is
// closed. Cache failures degrade to an uncached build.
func (s *Service) Build(ctx context.Context, report Report, from, to time.Time) (json.RawMessage, error) {
	if !s.Cacheable(report, to) {
		return s.uncached(ctx, report, from, to)
	}
	key, err := s.cache.Key(ctx, string(report), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		s.logger.Warn("report cache key", slog.String("report", string(report)), slog.Any("error", err))
		return s.uncached(ctx, report, from, to)
	}

	var (
		raw       json.RawMessage
		reportErr error
	)
	hit, err := s.cache.FetchJSON(ctx, key, &raw, func(ctx context.Context) (any, error) {
		value, err := s.Generate(ctx, report, from, to)
		reportErr = err
		return value, err
	})
	if reportErr != nil {
		return nil, reportErr
	}
	var stored *StoreError
	if errors.As(err, &stored) {
		s.logger.Warn("report cache store", slog.String("report", string(report)), slog.Any("error", stored.Err))
		err = nil
	}
	if err != nil {
		s.logger.Warn("report cache", slog.String("report", string(report)), slog.Any("error", err))
		return s.uncached(ctx, report, from, to)
	}
	if s.observer != nil {
		s.observer.RecordCache(string(report), hit)
	}
	return raw, nil
}

func (s *Service) uncached(ctx context.Context, report Report, from, to time.Time) (json.RawMessage, error) {
	value, err := s.Generate(ctx, report, from, to)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
