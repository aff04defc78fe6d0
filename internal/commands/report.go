package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

func newLedgerCommand(opts *globalOptions) *cobra.Command {
	var all bool
	var filter string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Show entries with running balances",
		Long:  "Show entries with running balances. By default only the open shift is shown; --all replays the whole log.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ledger.ParseFilter(filter)
			if err != nil {
				return err
			}
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			rows, err := ws.svc.RunningLedger(!all)
			if err != nil {
				return err
			}
			rows = balance.FilterRows(rows, f)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tTARGET\tCONCEPT\tIN\tOUT\tBALANCE\tCUR")
			for _, r := range rows {
				e := r.Entry
				in, out := "", ""
				if e.Direction == model.Income {
					in = money.Format(e.Amount, e.Currency)
				} else {
					out = money.Format(e.Amount, e.Currency)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Timestamp.Local().Format("01-02 15:04"), e.Target(), e.Concept,
					in, out, money.Format(r.Balance, e.Currency), e.Currency)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "replay the whole log instead of the open shift")
	cmd.Flags().StringVar(&filter, "filter", "all", "all, cash or digital")
	return cmd
}

func newSummaryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show opening, current and all-time balances per account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACCOUNT\tNAME\tCUR\tOPENING\tCURRENT\tALL-TIME")
			for _, s := range ws.svc.AccountSummaries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.Target, s.Name, s.Currency,
					money.Format(s.OpeningBalance, s.Currency),
					money.Format(s.CurrentBalance, s.Currency),
					money.Format(s.AllTimeBalance, s.Currency))
			}
			return tw.Flush()
		},
	}
}

func newCountCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count <face=qty>...",
		Short: "Total a denomination count",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := money.ParseCounts(args)
			if err != nil {
				return err
			}
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			res, err := ws.svc.CountDenominations(counts)
			if err != nil {
				return err
			}
			printSheet(cmd.OutOrStdout(), res.Sheet, res.Total, ws.svc.BaseCurrency())
			return nil
		},
	}
}

func newVerifyCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the ledger file for invariant violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			problems := ws.svc.Verify()
			out := cmd.OutOrStdout()
			for _, p := range problems {
				fmt.Fprintln(out, p.Error())
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problems found", len(problems))
			}
			fmt.Fprintln(out, "Ledger OK")
			return nil
		},
	}
}
