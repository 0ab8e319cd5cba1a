package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func (r *runner) accountsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "accounts", Short: "Manage the chart of accounts"}

	var file string
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create accounts from a YAML chart, or the starter chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			specs := accounts.DefaultChart()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				if specs, err = accounts.LoadChart(f); err != nil {
					return err
				}
			}
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				result, err := env.Accounts.Seed(ctx, specs)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(out, "created %d, skipped %d\n", len(result.Created), len(result.Skipped))
				return err
			})
		},
	}
	seed.Flags().StringVar(&file, "file", "", "YAML chart of accounts")

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				rows, err := env.Accounts.List(ctx)
				if err != nil {
					return err
				}
				return printAccounts(out, rows)
			})
		},
	}

	cmd.AddCommand(seed, list)
	return cmd
}

func printAccounts(out io.Writer, rows []accounts.Account) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tTYPE")
	for _, a := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Code, a.Name, a.Type)
	}
	return tw.Flush()
}

func (r *runner) journalsCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "journals", Short: "Inspect posted journal entries"}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := parseDay("from", from, time.Time{})
			if err != nil {
				return err
			}
			end, err := parseDay("to", to, time.Time{})
			if err != nil {
				return err
			}
			if !end.IsZero() {
				end = endOfDay(end)
			}
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				entries, err := env.Journals.List(ctx, shared.Between(start, end))
				if err != nil {
					return err
				}
				return printEntries(out, entries)
			})
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	list.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")

	cmd.AddCommand(list)
	return cmd
}

func printEntries(out io.Writer, entries []journals.JournalEntry) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "NUMBER\tDATE\tREFERENCE\tDEBITS\tCREDITS\t")
	for _, e := range entries {
		ref := "-"
		if e.Reference != nil {
			ref = *e.Reference
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", e.EntryNumber, e.Date.Format(dateLayout), ref, amount(e.TotalDebits), amount(e.TotalCredits))
	}
	return tw.Flush()
}

func (r *runner) trialBalanceCommand() *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print account balances and the accounting equation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseDay("as-of", asOf, r.now().UTC())
			if err != nil {
				return err
			}
			return r.with(cmd, func(ctx context.Context, env *Env, out io.Writer) error {
				tb, err := env.Balances.TrialBalance(ctx, endOfDay(day))
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
				fmt.Fprintln(tw, "CODE\tNAME\tDEBIT\tCREDIT\tBALANCE\t")
				for _, row := range tb.Rows() {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", row.Account.Code, row.Account.Name, amount(row.Debit), amount(row.Credit), amount(row.Balance))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				eq := tb.Equation()
				status := "holds"
				if !eq.Holds {
					status = "BROKEN"
				}
				_, err = fmt.Fprintf(out, "\nassets + expenses = %s, liabilities + equity + revenue = %s (%s)\n",
					amount(eq.DebitNormal), amount(eq.CreditNormal), status)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "balance date, YYYY-MM-DD (default today)")
	return cmd
}
