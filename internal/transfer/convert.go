package transfer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/money"
)

// Op is how a rate is applied to go from one currency to another.
type Op string

const (
	Multiply Op = "multiply"
	Divide   Op = "divide"
)

// Rule says how to convert From into To.
type Rule struct {
	From string
	To   string
	Op   Op
}

type pair struct{ from, to string }

// Table is the conversion-direction lookup keyed by (from, to).
type Table struct {
	ops map[pair]Op
}

// NewTable builds a Table from rules. Later rules for the same pair win.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{ops: make(map[pair]Op, len(rules))}
	for _, r := range rules {
		if r.Op != Multiply && r.Op != Divide {
			return nil, fmt.Errorf("conversion %s->%s: unknown op %q", r.From, r.To, r.Op)
		}
		from, to := strings.ToUpper(r.From), strings.ToUpper(r.To)
		if from == "" || to == "" || from == to {
			return nil, fmt.Errorf("conversion %q->%q: need two distinct currencies", r.From, r.To)
		}
		t.ops[pair{from, to}] = r.Op
	}
	return t, nil
}

// DefaultTable quotes rates as base units per US dollar: USD to base
// multiplies, base to USD divides.
func DefaultTable(base string) *Table {
	base = strings.ToUpper(base)
	t := &Table{ops: make(map[pair]Op)}
	if base != "USD" {
		t.ops[pair{"USD", base}] = Multiply
		t.ops[pair{base, "USD"}] = Divide
	}
	return t
}

// Lookup returns the op for converting from into to.
func (t *Table) Lookup(from, to string) (Op, bool) {
	op, ok := t.ops[pair{strings.ToUpper(from), strings.ToUpper(to)}]
	return op, ok
}

// Rules returns the table contents.
func (t *Table) Rules() []Rule {
	out := make([]Rule, 0, len(t.ops))
	for p, op := range t.ops {
		out = append(out, Rule{From: p.from, To: p.to, Op: op})
	}
	return out
}

// Convert turns amount in currency from into currency to, rounded half away
// from zero to the destination's minor units. Same-currency amounts pass
// through unchanged and ignore rate.
func (t *Table) Convert(amount, rate decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if strings.EqualFold(from, to) {
		return amount, nil
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, apperrors.Validation("rate", "exchange rate must be greater than zero for %s->%s", from, to)
	}
	op, ok := t.Lookup(from, to)
	if !ok {
		return decimal.Decimal{}, apperrors.Validation("currency", "no conversion rule for %s->%s", strings.ToUpper(from), strings.ToUpper(to))
	}
	var out decimal.Decimal
	switch op {
	case Multiply:
		out = amount.Mul(rate)
	case Divide:
		out = amount.Div(rate)
	}
	return money.Round(out, to), nil
}
