package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/model"
)

// Window restricts replay to entries with FromSeq <= Seq < ToSeq.
// ToSeq of zero leaves the window open-ended.
type Window struct {
	FromSeq uint64
	ToSeq   uint64
}

// All is the window covering the whole log.
var All = Window{}

// Row is an entry annotated with the running balance of its target.
type Row struct {
	Entry   model.Entry
	Balance decimal.Decimal
}

// Summary is the dual view of one target: the shift-scoped balance and the
// all-time replay.
type Summary struct {
	Target         model.Target
	Name           string
	Currency       string
	OpeningBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	AllTimeBalance decimal.Decimal
}

// Openings supplies the starting balance for each target.
type Openings func(model.Target) decimal.Decimal

// Reconstructor replays a fixed entry log. It never mutates the log and the
// same log always yields the same balances.
type Reconstructor struct {
	entries []model.Entry
}

// New creates a Reconstructor over a snapshot of entries.
func New(entries []model.Entry) *Reconstructor {
	return &Reconstructor{entries: ledger.Sorted(entries)}
}

// Entries returns the log in reconstruction order.
func (r *Reconstructor) Entries() []model.Entry {
	return r.entries
}

// Balance returns opening plus the signed amounts of target's entries inside
// the window with Timestamp <= asOf. A zero asOf means no time bound.
func (r *Reconstructor) Balance(target model.Target, opening decimal.Decimal, w Window, asOf time.Time) decimal.Decimal {
	bal := opening
	for _, e := range ledger.ByTarget(ledger.ByTimeRange(r.window(w), time.Time{}, asOf), target) {
		bal = bal.Add(e.Signed())
	}
	return bal
}

func (r *Reconstructor) window(w Window) []model.Entry {
	return ledger.SeqRange(r.entries, w.FromSeq, w.ToSeq)
}

// Running annotates each entry in the window with its target's accumulated
// balance. An opening adjustment sets the balance to the value it recorded
// instead of adding its amount.
func (r *Reconstructor) Running(openings Openings, w Window) []Row {
	current := make(map[model.Target]decimal.Decimal)
	var rows []Row
	for _, e := range r.window(w) {
		t := e.Target()
		bal, ok := current[t]
		if !ok {
			bal = openings(t)
		}
		if e.IsOpeningAdjustment() && e.BalanceAfter.Valid {
			bal = e.BalanceAfter.Decimal
		} else {
			bal = bal.Add(e.Signed())
		}
		current[t] = bal
		rows = append(rows, Row{Entry: e, Balance: bal})
	}
	return rows
}

// FilterRows keeps rows whose entry passes f.
func FilterRows(rows []Row, f ledger.Filter) []Row {
	var out []Row
	for _, row := range rows {
		if f.Match(row.Entry) {
			out = append(out, row)
		}
	}
	return out
}
