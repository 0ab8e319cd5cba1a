// Package cli implements the ledgerctl operator commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// AccountService is the slice of accounts.Service the CLI drives.
type AccountService interface {
	List(ctx context.Context) ([]accounts.Account, error)
	Seed(ctx context.Context, specs []accounts.Spec) (accounts.SeedResult, error)
}

// JournalLister lists posted entries.
type JournalLister interface {
	List(ctx context.Context, rng shared.DateRange) ([]journals.JournalEntry, error)
}

// TrialBalancer replays the ledger up to a date.
type TrialBalancer interface {
	TrialBalance(ctx context.Context, asOf time.Time) (reports.TrialBalance, error)
}

// ReportBuilder renders an operational report as JSON.
type ReportBuilder interface {
	Build(ctx context.Context, report reporting.Report, from, to time.Time) (json.RawMessage, error)
	Invalidate(ctx context.Context) error
}

// Enqueuer submits background jobs.
type Enqueuer interface {
	EnqueueIntegrity(ctx context.Context, asOf time.Time) (*asynq.TaskInfo, error)
	EnqueueWarmup(ctx context.Context, days int) (*asynq.TaskInfo, error)
}

// Env carries the services one command invocation needs. Jobs and Queue are
// nil when no Redis is configured.
type Env struct {
	Migrate  func(ctx context.Context) error
	Accounts AccountService
	Journals JournalLister
	Balances TrialBalancer
	Reports  ReportBuilder
	Jobs     Enqueuer
	Queue    jobs.QueueInspector
	Close    func()
}

// Connector opens an Env. It runs once per command, after flags are parsed.
type Connector func(ctx context.Context) (*Env, error)

var errNoQueue = errors.New("ledgerctl: REDIS_ADDR is not configured")

type runner struct {
	connect Connector
	timeout time.Duration
	now     func() time.Time
}

// NewRootCommand builds the ledgerctl command tree.
func NewRootCommand(connect Connector, version string) *cobra.Command {
	r := &runner{connect: connect, now: time.Now}
	root := &cobra.Command{
		Use:     "ledgerctl",
		Short:   "Operate the odyssey ledger and reporting engine",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", time.Minute, "abort the command after this long")

	root.AddCommand(
		r.migrateCommand(),
		r.accountsCommand(),
		r.journalsCommand(),
		r.trialBalanceCommand(),
		r.reportCommand(),
		r.invalidateReportsCommand(),
		r.jobsCommand(),
	)
	return root
}

// with connects, runs fn under the command timeout and releases the Env.
func (r *runner) with(cmd *cobra.Command, fn func(ctx context.Context, env *Env, out io.Writer) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	env, err := r.connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if env.Close != nil {
		defer env.Close()
	}
	return fn(ctx, env, cmd.OutOrStdout())
}

func (r *runner) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				if err := env.Migrate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, "schema up to date")
				return err
			})
		},
	}
}
