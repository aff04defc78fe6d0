package cashbox

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// CountResult is a denomination count laid out on the full face list.
type CountResult struct {
	Sheet []money.Count
	Total decimal.Decimal
}

// CurrentSession returns the open session, if any.
func (s *Service) CurrentSession() (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Current()
}

// Sessions returns every session, newest first.
func (s *Service) Sessions() []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.History()
}

// ExpectedOpeningCash is the cash the next shift should find in the till.
func (s *Service) ExpectedOpeningCash() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.ExpectedOpeningCash()
}

// RunningLedger returns entries annotated with their target's accumulated
// balance. With sinceShiftOpen it covers only the open shift, starting from
// the balances confirmed at open; without a shift that is a state conflict.
// Otherwise it replays the whole log from the initial float.
func (s *Service) RunningLedger(sinceShiftOpen bool) ([]balance.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := balance.New(s.ledger.Entries())
	if !sinceShiftOpen {
		return r.Running(s.baseline, balance.All), nil
	}
	session, ok := s.machine.Current()
	if !ok {
		return nil, apperrors.StateConflict("no shift is open")
	}
	return r.Running(s.shiftOpenings(r, session), balance.Window{FromSeq: session.OpeningSeq}), nil
}

// AccountSummaries returns the till followed by every bank account. With a
// shift open, OpeningBalance is the balance confirmed at open and
// CurrentBalance adds the shift's entries; otherwise both come from the full
// replay. AllTimeBalance is always the full replay.
func (s *Service) AccountSummaries() []balance.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := balance.New(s.ledger.Entries())
	session, open := s.machine.Current()
	var openings balance.Openings
	if open {
		openings = s.shiftOpenings(r, session)
	}

	targets := []model.Target{model.Cash}
	for _, acct := range s.accounts.All() {
		targets = append(targets, model.Target(acct.ID))
	}

	out := make([]balance.Summary, 0, len(targets))
	for _, t := range targets {
		sum := balance.Summary{
			Target:         t,
			Name:           s.nameOf(t),
			Currency:       s.currencyOf(t),
			AllTimeBalance: r.Balance(t, s.baseline(t), balance.All, time.Time{}),
		}
		if open {
			sum.OpeningBalance = openings(t)
			sum.CurrentBalance = r.Balance(t, sum.OpeningBalance, balance.Window{FromSeq: session.OpeningSeq}, time.Time{})
		} else {
			sum.OpeningBalance = s.baseline(t)
			sum.CurrentBalance = sum.AllTimeBalance
		}
		out = append(out, sum)
	}
	return out
}

// CountDenominations totals a till count and lays it out on the configured
// face values.
func (s *Service) CountDenominations(counts []money.Count) (CountResult, error) {
	if err := money.CheckCounts(counts, s.denominations); err != nil {
		return CountResult{}, err
	}
	return CountResult{
		Sheet: money.Sheet(counts, s.denominations),
		Total: money.Total(counts),
	}, nil
}

// Verify checks the stored log against the ledger invariants.
func (s *Service) Verify() []ledger.ValidationError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ledger.ValidateEntries(s.ledger.Entries(), s.accounts)
}

// baseline is the balance a target starts from before any entry.
// sessionOf returns the ID of the open shift if its window holds seq.
func (s *Service) sessionOf(seq uint64) string {
	if cur, ok := s.machine.Current(); ok && cur.Contains(seq) {
		return cur.ID
	}
	return ""
}

func (s *Service) baseline(t model.Target) decimal.Decimal {
	if t.IsCash() {
		return s.initialFloat
	}
	return decimal.Zero
}

// shiftOpenings returns the balances confirmed when session opened. Accounts
// added during the shift fall back to their replayed balance before the
// shift window.
func (s *Service) shiftOpenings(r *balance.Reconstructor, session model.Session) balance.Openings {
	return func(t model.Target) decimal.Decimal {
		if t.IsCash() {
			return session.CountedOpeningCash
		}
		if v, ok := session.ConfirmedBankBalancesAtOpen[string(t)]; ok {
			return v
		}
		return r.Balance(t, decimal.Zero, balance.Window{ToSeq: session.OpeningSeq}, time.Time{})
	}
}
