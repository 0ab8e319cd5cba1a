package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/observability"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
)

// Services holds the wired ledger and reporting stack shared by the server,
// the worker and the CLI.
type Services struct {
	Pool        *pgxpool.Pool
	Redis       *redis.Client
	Ledger      *accounting.Module
	ReportCache *reporting.Cache
	Reports     *reporting.Service
}

// Bootstrap connects to PostgreSQL and, when configured, Redis, then wires
// the services. An unreachable Redis degrades to uncached reports.
func Bootstrap(ctx context.Context, cfg *Config, logger *slog.Logger, metrics *observability.Metrics) (*Services, error) {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
			rdb = nil
		}
	}

	ledger := accounting.New(pool)
	reportCache := reporting.NewCache(rdb, cfg.ReportCacheTTL)
	ledger.Journals.WithInvalidator(reportCache).WithRecorder(metrics)

	src := reporting.NewRepository(pool).Sources()
	src.Accounts = ledger.Accounts
	src.Entries = ledger.Journals
	engine := reporting.NewEngine(src).
		WithConcurrency(cfg.ReportConcurrency).
		WithOpening(reporting.CashAccountOpening{Balances: ledger.Calculator, Codes: cfg.CashAccountCodes})

	return &Services{
		Pool:        pool,
		Redis:       rdb,
		Ledger:      ledger,
		ReportCache: reportCache,
		Reports:     reporting.NewService(engine, reportCache, logger).WithObserver(metrics),
	}, nil
}

// Close releases connections.
func (s *Services) Close() {
	if s == nil {
		return
	}
	if s.Redis != nil {
		_ = s.Redis.Close()
	}
	if s.Pool != nil {
		s.Pool.Close()
	}
}
