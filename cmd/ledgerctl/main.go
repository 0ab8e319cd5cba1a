package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/cmd/ledgerctl/cli"
	"github.com/odyssey-erp/odyssey-ledger/internal/app"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func connect(ctx context.Context) (*cli.Env, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg)
	svc, err := app.Bootstrap(ctx, cfg, logger, nil)
	if err != nil {
		return nil, err
	}

	env := &cli.Env{
		Migrate:  func(ctx context.Context) error { return db.Migrate(ctx, svc.Pool) },
		Accounts: svc.Ledger.Accounts,
		Journals: svc.Ledger.Journals,
		Balances: svc.Ledger.Calculator,
		Reports:  svc.Reports,
	}
	closers := []func(){svc.Close}

	if cfg.RedisAddr != "" {
		redisOpt, err := jobs.RedisOpt(cfg.RedisAddr)
		if err != nil {
			svc.Close()
			return nil, err
		}
		client := jobs.NewClient(redisOpt)
		inspector := asynq.NewInspector(redisOpt)
		env.Jobs = client
		env.Queue = inspector
		closers = append(closers, func() { _ = client.Close() }, func() { _ = inspector.Close() })
	}

	env.Close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return env, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(connect, version).ExecuteContext(ctx); err != nil {
		slog.Default().Debug("ledgerctl failed", slog.Any("error", err))
		os.Exit(1)
	}
}
