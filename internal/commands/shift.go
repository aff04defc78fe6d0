package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
)

// shiftFlags are shared by open and close.
type shiftFlags struct {
	cash  cashFlags
	banks []string
	notes string
	yes   bool
}

func (f *shiftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cash.total, "cash", "", "counted cash total")
	cmd.Flags().StringSliceVar(&f.cash.counts, "count", nil, "counted denomination as face=quantity (repeatable)")
	cmd.Flags().StringSliceVar(&f.banks, "bank", nil, "declared bank balance as account=amount (repeatable)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "accept reported discrepancies")
}

// explainWarning prints the report behind an unacknowledged discrepancy and
// returns a short error telling the operator how to proceed.
func explainWarning(w io.Writer, err error) error {
	var warn *reconcile.Warning
	if !errors.As(err, &warn) {
		return err
	}
	printReport(w, warn.Report)
	return fmt.Errorf("%d discrepancies at %s; count again or re-run with --yes to accept", len(warn.Report.Discrepancies), warn.Report.Phase)
}

func newOpenCommand(opts *globalOptions) *cobra.Command {
	var f shiftFlags
	var preview bool

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a shift with a counted till and declared bank balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			count, err := f.cash.toCount()
			if err != nil {
				return err
			}
			banks, err := parseBalances(f.banks)
			if err != nil {
				return err
			}
			params := cashbox.OpenParams{
				Cash:                 count,
				DeclaredBankBalances: banks,
				Notes:                f.notes,
				User:                 opts.user,
				Acknowledge:          f.yes,
			}

			out := cmd.OutOrStdout()
			base := ws.svc.BaseCurrency()
			if len(count.Denominations) > 0 {
				sheet := money.Sheet(count.Denominations, ws.svc.Denominations())
				printSheet(out, sheet, money.Total(count.Denominations), base)
			}

			if preview {
				report, adjustments, err := ws.svc.PreviewOpen(params)
				if err != nil {
					return err
				}
				printReport(out, report)
				for _, a := range adjustments {
					fmt.Fprintf(out, "would adjust %s by %s %s\n", a.Target(), a.Direction, money.Format(a.Amount, a.Currency))
				}
				return nil
			}

			res, err := ws.svc.OpenShift(params)
			if err != nil {
				return explainWarning(out, err)
			}
			printReport(out, res.Report)
			for _, a := range res.Adjustments {
				printEntry(out, a)
			}
			fmt.Fprintf(out, "Opened %s with %s in the till\n", res.Session.ID, money.Display(res.Session.CountedOpeningCash, base))

			if _, err := ws.commit("open: " + res.Session.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&preview, "preview", false, "reconcile without opening")
	return cmd
}

func newCloseCommand(opts *globalOptions) *cobra.Command {
	var f shiftFlags
	var expectedCash, expectedDigital string
	var preview bool

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the open shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			count, err := f.cash.toCount()
			if err != nil {
				return err
			}
			banks, err := parseBalances(f.banks)
			if err != nil {
				return err
			}
			expCash, err := parseOptionalAmount("expected_cash", expectedCash)
			if err != nil {
				return err
			}
			expDigital, err := parseOptionalAmount("expected_digital", expectedDigital)
			if err != nil {
				return err
			}
			params := cashbox.CloseParams{
				Cash:                 count,
				DeclaredBankBalances: banks,
				ExpectedCash:         expCash,
				ExpectedDigital:      expDigital,
				Notes:                f.notes,
				User:                 opts.user,
				Acknowledge:          f.yes,
			}

			out := cmd.OutOrStdout()
			base := ws.svc.BaseCurrency()
			if len(count.Denominations) > 0 {
				sheet := money.Sheet(count.Denominations, ws.svc.Denominations())
				printSheet(out, sheet, money.Total(count.Denominations), base)
			}

			if preview {
				report, err := ws.svc.PreviewClose(params)
				if err != nil {
					return err
				}
				printReport(out, report)
				return nil
			}

			res, err := ws.svc.CloseShift(params)
			if err != nil {
				return explainWarning(out, err)
			}
			printReport(out, res.Report)
			s := res.Session
			fmt.Fprintf(out, "Closed %s: expected %s, counted %s, difference %s\n",
				s.ID,
				money.Display(s.ExpectedCashAtClose, base),
				money.Display(s.CountedCashAtClose, base),
				money.Format(s.CashDifferenceAtClose, base))

			msg := fmt.Sprintf("close: %s (diff %s)", s.ID, money.Format(s.CashDifferenceAtClose, base))
			if _, err := ws.commit(msg); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&expectedCash, "expected-cash", "", "override the expected cash")
	cmd.Flags().StringVar(&expectedDigital, "expected-digital", "", "override the expected digital total")
	cmd.Flags().BoolVar(&preview, "preview", false, "reconcile without closing")
	return cmd
}

func newSessionsCommand(opts *globalOptions) *cobra.Command {
	var currentOnly bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Show shift history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			base := ws.svc.BaseCurrency()

			if currentOnly {
				s, ok := ws.svc.CurrentSession()
				if !ok {
					fmt.Fprintf(out, "No shift is open. Expected opening cash: %s\n", money.Display(ws.svc.ExpectedOpeningCash(), base))
					return nil
				}
				printSession(out, s, base)
				return nil
			}

			sessions := ws.svc.Sessions()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No sessions yet.")
				return nil
			}
			for _, s := range sessions {
				printSession(out, s, base)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&currentOnly, "current", false, "show only the open shift")
	return cmd
}
