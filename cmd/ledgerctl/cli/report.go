package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/reporting"
)

func reportNames() string {
	names := make([]string, 0, len(reporting.Reports))
	for _, r := range reporting.Reports {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

func (r *runner) reportCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Build an operational report as JSON",
		Long:  "Build an operational report as JSON. Reports: " + reportNames() + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, ok := reporting.ParseReport(args[0])
			if !ok {
				return fmt.Errorf("unknown report %q, want one of %s", args[0], reportNames())
			}
			now := r.now().UTC()
			end, err := parseDay("to", to, now)
			if err != nil {
				return err
			}
			start, err := parseDay("from", from, end.AddDate(0, 0, -30))
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				raw, err := env.Reports.Build(ctx, report, startOfDay(start), endOfDay(end))
				if err != nil {
					return err
				}
				var pretty bytes.Buffer
				if err := json.Indent(&pretty, raw, "", "  "); err != nil {
					return err
				}
				pretty.WriteByte('\n')
				_, err = pretty.WriteTo(out)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD (default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD (default today)")
	return cmd
}

func (r *runner) invalidateReportsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate-reports",
		Short: "Drop every cached report by moving the cache version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				if err := env.Reports.Invalidate(ctx); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out, "report cache invalidated")
				return err
			})
		},
	}
}
