package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
)

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseBalances turns ["BCP=500", "BBVA=12.5"] into a map.
func parseBalances(pairs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(pairs))
	for _, p := range pairs {
		id, amount, ok := strings.Cut(p, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, apperrors.Validation("bank", "expected account=amount, got %q", p)
		}
		d, err := money.Parse("bank", amount)
		if err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, nil
}

// cashFlags are the ways to report a till count on the command line.
type cashFlags struct {
	total  string
	counts []string
}

func (f cashFlags) toCount() (cashbox.CashCount, error) {
	var c cashbox.CashCount
	if f.total != "" {
		d, err := money.Parse("cash", f.total)
		if err != nil {
			return c, err
		}
		c.Total = decimal.NewNullDecimal(d)
	}
	counts, err := money.ParseCounts(f.counts)
	if err != nil {
		return c, err
	}
	c.Denominations = counts
	return c, nil
}

func parseOptionalAmount(field, s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := money.Parse(field, s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func printReport(w io.Writer, r reconcile.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ACCOUNT\tCUR\tDECLARED\tEXPECTED\tDIFF\t")
	for _, l := range r.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			l.Name, l.Currency,
			money.Format(l.Declared, l.Currency),
			money.Format(l.Expected, l.Currency),
			money.Format(l.Difference(), l.Currency))
	}
	_ = tw.Flush()

	if r.Clean() {
		fmt.Fprintln(w, "No discrepancies.")
		return
	}
	for _, d := range r.Discrepancies {
		fmt.Fprintf(w, "! %s\n", d)
	}
}

func printSheet(w io.Writer, sheet []money.Count, total decimal.Decimal, currency string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FACE\tQTY\tSUBTOTAL\t")
	for _, c := range sheet {
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", money.Format(c.Face, currency), c.Quantity, money.Format(c.Subtotal(), currency))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t\n", money.Format(total, currency))
	_ = tw.Flush()
}

func printSession(w io.Writer, s model.Session, currency string) {
	fmt.Fprintf(w, "Session %s (%s)\n", s.ID, s.Status)
	fmt.Fprintf(w, "  opened  %s by %s\n", s.OpenedAt.Local().Format("2006-01-02 15:04"), s.OpeningUser)
	fmt.Fprintf(w, "  cash    expected %s counted %s diff %s\n",
		money.Display(s.ExpectedOpeningCash, currency),
		money.Display(s.CountedOpeningCash, currency),
		money.Format(s.OpeningCashDifference, currency))
	printBalances(w, "  banks  ", s.ConfirmedBankBalancesAtOpen)
	if s.IsOpen() {
		return
	}
	fmt.Fprintf(w, "  closed  %s by %s\n", s.ClosedAt.Local().Format("2006-01-02 15:04"), s.ClosingUser)
	fmt.Fprintf(w, "  cash    expected %s counted %s diff %s\n",
		money.Display(s.ExpectedCashAtClose, currency),
		money.Display(s.CountedCashAtClose, currency),
		money.Format(s.CashDifferenceAtClose, currency))
	fmt.Fprintf(w, "  digital expected %s\n", money.Display(s.ExpectedDigitalAtClose, currency))
	printBalances(w, "  banks  ", s.ConfirmedBankBalancesAtClose)
}

func printBalances(w io.Writer, prefix string, m map[string]decimal.Decimal) {
	if len(m) == 0 {
		return
	}
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id + "=" + m[id].String()
	}
	fmt.Fprintf(w, "%s %s\n", prefix, strings.Join(parts, " "))
}

func printEntry(w io.Writer, e model.Entry) {
	target := string(e.Target())
	fmt.Fprintf(w, "%s  %-7s %-10s %s %s  %s\n",
		e.ID, e.Direction, target, money.Format(e.Amount, e.Currency), e.Currency, e.Concept)
}
