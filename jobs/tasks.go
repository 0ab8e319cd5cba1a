package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskLedgerIntegrity checks the accounting equation over the trial balance.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskReportsWarmup pre-builds every report for the trailing window.
	TaskReportsWarmup = "reports:warmup"

	// IntegrityCron runs the integrity check at the top of every hour.
	IntegrityCron = "0 * * * *"
	// WarmupCron rebuilds the report cache nightly.
	WarmupCron = "15 1 * * *"
)

// LedgerIntegrityPayload scopes an integrity check. A zero AsOf means now.
type LedgerIntegrityPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// ReportsWarmupPayload sets the trailing window, in days, to warm.
type ReportsWarmupPayload struct {
	Days int `json:"days"`
}

// NewLedgerIntegrityTask builds an integrity check task.
func NewLedgerIntegrityTask(asOf time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(LedgerIntegrityPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, body, asynq.Queue(QueueDefault), asynq.MaxRetry(1)), nil
}

// NewReportsWarmupTask builds a warmup task for the trailing days.
func NewReportsWarmupTask(days int) (*asynq.Task, error) {
	if days <= 0 {
		days = DefaultWarmupDays
	}
	body, err := json.Marshal(ReportsWarmupPayload{Days: days})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
