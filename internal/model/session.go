package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a shift.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// Session is one open/close cycle of the till. Opening fields are written at
// open, closing fields at close, and neither changes afterwards.
type Session struct {
	ID     string
	Status SessionStatus

	OpenedAt                    time.Time
	OpeningUser                 string
	OpeningSeq                  uint64 // first ledger seq belonging to the shift
	ExpectedOpeningCash         decimal.Decimal
	CountedOpeningCash          decimal.Decimal
	OpeningCashDifference       decimal.Decimal
	SystemBankBalancesAtOpen    map[string]decimal.Decimal
	ConfirmedBankBalancesAtOpen map[string]decimal.Decimal
	OpeningNotes                string

	ClosedAt                     time.Time
	ClosingUser                  string
	ClosingSeq                   uint64 // first ledger seq after the shift
	ExpectedCashAtClose          decimal.Decimal
	CountedCashAtClose           decimal.Decimal
	CashDifferenceAtClose        decimal.Decimal
	ExpectedDigitalAtClose       decimal.Decimal
	SystemBankBalancesAtClose    map[string]decimal.Decimal
	ConfirmedBankBalancesAtClose map[string]decimal.Decimal
	ClosingNotes                 string
}

// IsOpen reports whether the session is the live shift.
func (s Session) IsOpen() bool { return s.Status == SessionOpen }

// Contains reports whether the ledger seq falls inside the shift window.
// An open shift has no upper bound yet.
func (s Session) Contains(seq uint64) bool {
	if seq < s.OpeningSeq {
		return false
	}
	return s.IsOpen() || seq < s.ClosingSeq
}
