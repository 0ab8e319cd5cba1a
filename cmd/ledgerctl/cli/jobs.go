package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

// QueueStats summarises the default queue.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reads the default queue counters.
func InspectQueue(inspector jobs.QueueInspector) (QueueStats, error) {
	if inspector == nil {
		return QueueStats{}, errNoQueue
	}
	info, err := inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

func (r *runner) jobsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Trigger and inspect background jobs"}

	var asOf string
	integrity := &cobra.Command{
		Use:   "integrity",
		Short: "Enqueue a ledger integrity check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay("as-of", asOf, time.Time{})
			if err != nil {
				return err
			}
			if !day.IsZero() {
				day = endOfDay(day)
			}
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				if env.Jobs == nil {
					return errNoQueue
				}
				info, err := env.Jobs.EnqueueIntegrity(ctx, day)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "enqueued %s %s\n", info.Type, info.ID)
				return err
			})
		},
	}
	integrity.Flags().StringVar(&asOf, "as-of", "", "check date, YYYY-MM-DD (default when the worker runs it)")

	var days int
	warmup := &cobra.Command{
		Use:   "warmup",
		Short: "Enqueue a report cache warmup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				if env.Jobs == nil {
					return errNoQueue
				}
				info, err := env.Jobs.EnqueueWarmup(ctx, days)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "enqueued %s %s\n", info.Type, info.ID)
				return err
			})
		},
	}
	warmup.Flags().IntVar(&days, "days", jobs.DefaultWarmupDays, "days of history to warm")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show default queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(_ context.Context, env *Env, out io.Writer) error {
				s, err := InspectQueue(env.Queue)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
					s.Queue, s.Pending, s.Active, s.Scheduled, s.Retry)
				return err
			})
		},
	}

	cmd.AddCommand(integrity, warmup, stats)
	return cmd
}
