package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-ledger/internal/jobs"
	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
)

// DefaultWarmupDays is the trailing window warmed when a payload omits it.
const DefaultWarmupDays = 30

// ReportBuilder builds and caches one report.
type ReportBuilder interface {
	Build(ctx context.Context, report reporting.Report, from, to time.Time) (json.RawMessage, error)
}

// ReportsWarmupJob pre-populates the report cache so the first request of
// the day is served from Redis.
type ReportsWarmupJob struct {
	Reports ReportBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(builder ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: builder, Logger: logger, Metrics: metrics, clock: time.Now}
}

// Handle processes TaskReportsWarmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	payload := ReportsWarmupPayload{Days: DefaultWarmupDays}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
	}
	_, err := j.Warm(ctx, payload.Days)
	return err
}

// Warm builds every ranged report for the trailing days ending yesterday,
// the newest window the report cache accepts, and returns how many were
// built.
func (j *ReportsWarmupJob) Warm(ctx context.Context, days int) (warmed int, err error) {
	if j == nil || j.Reports == nil {
		return 0, errors.New("reports warmup: builder not configured")
	}
	if days <= 0 {
		days = DefaultWarmupDays
	}
	tracker := j.Metrics.Track(TaskReportsWarmup)
	defer func() { err = tracker.End(err) }()

	now := j.now()
	today := now.UTC().Truncate(24 * time.Hour)
	to := today.Add(-time.Nanosecond)
	from := today.AddDate(0, 0, -days)
	logger := j.logger().With(slog.Int("days", days))
	logger.Info("starting reports warmup")

	for _, report := range reporting.Reports {
		if !report.Ranged() {
			continue
		}
		reportCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		_, err := j.Reports.Build(reportCtx, report, from, to)
		cancel()
		if err != nil {
			logger.Error("warm report", slog.String("report", string(report)), slog.Any("error", err))
			return warmed, err
		}
		warmed++
	}
	logger.Info("completed reports warmup", slog.Int("reports", warmed), slog.Duration("duration", time.Since(now)))
	return warmed, nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportsWarmup))
}

func (j *ReportsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock().UTC()
	}
	return time.Now().UTC()
}
