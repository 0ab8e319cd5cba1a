package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
)

// ErrLedgerImbalanced reports a trial balance that breaks the accounting equation.
var ErrLedgerImbalanced = errors.New("ledger: accounting equation does not hold")

// TrialBalancer computes trial balances.
type TrialBalancer interface {
	TrialBalance(ctx context.Context, asOf time.Time) (reports.TrialBalance, error)
}

// GLIntegrityJob verifies that debit-normal and credit-normal balances agree.
type GLIntegrityJob struct {
	Balances TrialBalancer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewGLIntegrityJob wires dependencies for the integrity handler.
func NewGLIntegrityJob(balances TrialBalancer, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Balances: balances, Logger: logger, Metrics: metrics, clock: time.Now}
}

// Handle processes TaskLedgerIntegrity tasks.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}
	_, err := j.Check(ctx, payload.AsOf)
	if errors.Is(err, ErrLedgerImbalanced) {
		// Retrying cannot fix posted data.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

// Check computes the trial balance as of asOf (now when zero) and returns
// ErrLedgerImbalanced when the equation gap exceeds the tolerance.
func (j *GLIntegrityJob) Check(ctx context.Context, asOf time.Time) (eq reports.Equation, err error) {
	if j == nil || j.Balances == nil {
		return reports.Equation{}, errors.New("gl integrity: balances not configured")
	}
	if asOf.IsZero() {
		asOf = j.now()
	}
	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	defer func() { err = tracker.End(err) }()

	logger := j.logger().With(slog.Time("as_of", asOf))
	tb, err := j.Balances.TrialBalance(ctx, asOf)
	if err != nil {
		logger.Error("load trial balance", slog.Any("error", err))
		return reports.Equation{}, err
	}
	eq = tb.Equation()
	gap := math.Abs(eq.DebitNormal - eq.CreditNormal)
	j.Metrics.SetEquationGap(gap)
	if !eq.Holds {
		logger.Error("accounting equation broken",
			slog.Float64("debit_normal", eq.DebitNormal),
			slog.Float64("credit_normal", eq.CreditNormal),
			slog.Float64("gap", gap))
		return eq, fmt.Errorf("%w: gap %.2f", ErrLedgerImbalanced, gap)
	}
	logger.Info("gl integrity check passed", slog.Int("accounts", len(tb.Balances)))
	return eq, nil
}

func (j *GLIntegrityJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskLedgerIntegrity))
}

func (j *GLIntegrityJob) now() time.Time {
	if j.clock != nil {
		return j.clock().UTC()
	}
	return time.Now().UTC()
}
