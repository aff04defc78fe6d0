package shift

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/id"
	"github.com/cleared-dev/cashbox/internal/model"
)

// Machine drives the NO_SESSION -> OPEN -> CLOSED lifecycle over a Store.
// At most one session is open at a time.
type Machine struct {
	store        Store
	initialFloat decimal.Decimal
}

// NewMachine creates a Machine. initialFloat is the expected opening cash
// before any shift has ever closed.
func NewMachine(store Store, initialFloat decimal.Decimal) *Machine {
	return &Machine{store: store, initialFloat: initialFloat}
}

// Current returns the open session, if any.
func (m *Machine) Current() (model.Session, bool) {
	sessions := m.store.Sessions()
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].IsOpen() {
			return sessions[i], true
		}
	}
	return model.Session{}, false
}

// History returns every session, newest first.
func (m *Machine) History() []model.Session {
	sessions := m.store.Sessions()
	slices.Reverse(sessions)
	return sessions
}

// LastClosed returns the most recently closed session.
func (m *Machine) LastClosed() (model.Session, bool) {
	sessions := m.store.Sessions()
	for i := len(sessions) - 1; i >= 0; i-- {
		if sessions[i].Status == model.SessionClosed {
			return sessions[i], true
		}
	}
	return model.Session{}, false
}

// ExpectedOpeningCash is the last close's counted cash, or the initial float
// when no shift has closed yet.
func (m *Machine) ExpectedOpeningCash() decimal.Decimal {
	if last, ok := m.LastClosed(); ok {
		return last.CountedCashAtClose
	}
	return m.initialFloat
}

// Opening holds the values fixed when a shift opens.
type Opening struct {
	At            time.Time
	User          string
	Seq           uint64
	CountedCash   decimal.Decimal
	SystemBank    map[string]decimal.Decimal
	ConfirmedBank map[string]decimal.Decimal
	Notes         string
}

// Open starts a new session. It fails with a state conflict if one is open.
func (m *Machine) Open(o Opening) (model.Session, error) {
	if cur, ok := m.Current(); ok {
		return model.Session{}, apperrors.StateConflict("shift %s is already open; close it first", cur.ID)
	}

	expected := m.ExpectedOpeningCash()
	s := model.Session{
		ID:                          id.FormatSessionID(len(m.store.Sessions()) + 1),
		Status:                      model.SessionOpen,
		OpenedAt:                    o.At,
		OpeningUser:                 o.User,
		OpeningSeq:                  o.Seq,
		ExpectedOpeningCash:         expected,
		CountedOpeningCash:          o.CountedCash,
		OpeningCashDifference:       o.CountedCash.Sub(expected),
		SystemBankBalancesAtOpen:    clone(o.SystemBank),
		ConfirmedBankBalancesAtOpen: clone(o.ConfirmedBank),
		OpeningNotes:                o.Notes,
	}
	if err := m.store.Save(s); err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// Closing holds the values fixed when a shift closes.
type Closing struct {
	At              time.Time
	User            string
	Seq             uint64
	ExpectedCash    decimal.Decimal
	CountedCash     decimal.Decimal
	ExpectedDigital decimal.Decimal
	SystemBank      map[string]decimal.Decimal
	ConfirmedBank   map[string]decimal.Decimal
	Notes           string
}

// Close ends the open session. It fails with a state conflict if none is open.
func (m *Machine) Close(c Closing) (model.Session, error) {
	s, ok := m.Current()
	if !ok {
		return model.Session{}, apperrors.StateConflict("no shift is open")
	}

	s.Status = model.SessionClosed
	s.ClosedAt = c.At
	s.ClosingUser = c.User
	s.ClosingSeq = c.Seq
	s.ExpectedCashAtClose = c.ExpectedCash
	s.CountedCashAtClose = c.CountedCash
	s.CashDifferenceAtClose = c.CountedCash.Sub(c.ExpectedCash)
	s.ExpectedDigitalAtClose = c.ExpectedDigital
	s.SystemBankBalancesAtClose = clone(c.SystemBank)
	s.ConfirmedBankBalancesAtClose = clone(c.ConfirmedBank)
	s.ClosingNotes = c.Notes

	if err := m.store.Save(s); err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// CheckDeclared requires a declared balance for every active account.
func CheckDeclared(active []model.BankAccount, declared map[string]decimal.Decimal) error {
	for _, a := range active {
		if _, ok := declared[a.ID]; !ok {
			return apperrors.Validation("declared_bank_balances", "missing declared balance for account %s (%s)", a.ID, a.DisplayName())
		}
	}
	return nil
}

func clone(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
