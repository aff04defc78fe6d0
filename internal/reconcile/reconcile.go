package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// Kind classifies a discrepancy.
type Kind string

const (
	Surplus  Kind = "SURPLUS"
	Shortage Kind = "SHORTAGE"
)

// Phase is the shift boundary a report was produced at.
type Phase string

const (
	PhaseOpen  Phase = "open"
	PhaseClose Phase = "close"
)

// Line is one declared-versus-expected comparison.
type Line struct {
	Target   model.Target
	Name     string
	Currency string
	Declared decimal.Decimal
	Expected decimal.Decimal
}

// Difference returns Declared - Expected.
func (l Line) Difference() decimal.Decimal {
	return l.Declared.Sub(l.Expected)
}

// Discrepancy is a line whose difference exceeds the tolerance.
type Discrepancy struct {
	Target     model.Target
	Name       string
	Currency   string
	Kind       Kind
	Amount     decimal.Decimal // absolute difference
	Difference decimal.Decimal // signed, declared - expected
}

func (d Discrepancy) String() string {
	return fmt.Sprintf("%s %s %s", d.Name, d.Kind, money.Display(d.Amount, d.Currency))
}

// Report is the outcome of reconciling every line at one boundary.
type Report struct {
	Phase         Phase
	Lines         []Line
	Discrepancies []Discrepancy
}

// Clean reports whether no line exceeded the tolerance.
func (r Report) Clean() bool { return len(r.Discrepancies) == 0 }

// Engine compares declared balances against system balances.
type Engine struct {
	tolerance decimal.NullDecimal
}

// NewEngine creates an Engine. An invalid tolerance means each currency uses
// its own minor unit.
func NewEngine(tolerance decimal.NullDecimal) Engine {
	return Engine{tolerance: tolerance}
}

// Threshold returns the largest difference that is not reported for currency.
func (e Engine) Threshold(currency string) decimal.Decimal {
	if e.tolerance.Valid {
		return e.tolerance.Decimal
	}
	return money.MinorUnit(currency)
}

// Exceeds reports whether |diff| is strictly greater than the threshold.
func (e Engine) Exceeds(diff decimal.Decimal, currency string) bool {
	return diff.Abs().GreaterThan(e.Threshold(currency))
}

// Reconcile classifies every line. Discrepancies keep the order of lines.
func (e Engine) Reconcile(phase Phase, lines []Line) Report {
	report := Report{Phase: phase, Lines: lines}
	for _, l := range lines {
		diff := l.Difference()
		if !e.Exceeds(diff, l.Currency) {
			continue
		}
		kind := Shortage
		if diff.IsPositive() {
			kind = Surplus
		}
		report.Discrepancies = append(report.Discrepancies, Discrepancy{
			Target:     l.Target,
			Name:       l.Name,
			Currency:   l.Currency,
			Kind:       kind,
			Amount:     diff.Abs(),
			Difference: diff,
		})
	}
	return report
}

// Warning is returned when a report has discrepancies the operator has not
// acknowledged. It matches apperrors.ErrReconciliation.
type Warning struct {
	Report Report
}

func (w *Warning) Error() string {
	items := make([]string, len(w.Report.Discrepancies))
	for i, d := range w.Report.Discrepancies {
		items[i] = d.String()
	}
	return fmt.Sprintf("%s: %d discrepancies at %s: %s", apperrors.ErrReconciliation, len(items), w.Report.Phase, strings.Join(items, "; "))
}

func (w *Warning) Unwrap() error { return apperrors.ErrReconciliation }
