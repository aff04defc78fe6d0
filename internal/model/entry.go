package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the sign of a ledger entry.
type Direction string

const (
	Income  Direction = "income"
	Expense Direction = "expense"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Income || d == Expense
}

// Method is the payment channel of an entry. The set is open; these are the
// channels the till knows how to label.
type Method string

const (
	MethodCash          Method = "cash"
	MethodBankTransfer  Method = "bank_transfer"
	MethodDigitalWallet Method = "digital_wallet"
	MethodCard          Method = "card"
	MethodDeposit       Method = "deposit"
	MethodStoreCredit   Method = "store_credit"
)

// Reserved categories.
const (
	CategoryOpeningAdjustment = "OPENING_ADJUSTMENT"
	CategoryTransfer          = "TRANSFER"
	CategoryVariable          = "VARIABLE"
)

// Target identifies where money sits: the cash till or a bank account ID.
type Target string

// Cash is the till.
const Cash Target = "CASH"

// ParseTarget normalizes user input into a Target. Empty input and any
// casing of "cash" resolve to the till.
func ParseTarget(s string) Target {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(Cash)) {
		return Cash
	}
	return Target(s)
}

// IsCash reports whether t is the till.
func (t Target) IsCash() bool { return t == Cash }

// Entry is one immutable row of the ledger.
type Entry struct {
	Seq         uint64 // assigned by the store, strictly increasing
	ID          string // "MOV-000001"
	Timestamp   time.Time
	Direction   Direction
	Method      Method
	Concept     string
	Amount      decimal.Decimal // never negative
	Currency    string
	Category    string
	AccountID   string // empty = cash till
	ReferenceID string
	TransferID  string // shared by both sides of a transfer
	User        string

	// BalanceAfter is set only on opening adjustments: the declared balance
	// the adjustment brings its target to.
	BalanceAfter decimal.NullDecimal
}

// Target returns the till or account the entry moves money in.
func (e Entry) Target() Target {
	if e.AccountID == "" {
		return Cash
	}
	return Target(e.AccountID)
}

// Signed returns +Amount for income and -Amount for expense.
func (e Entry) Signed() decimal.Decimal {
	if e.Direction == Expense {
		return e.Amount.Neg()
	}
	return e.Amount
}

// IsOpeningAdjustment reports whether the entry was synthesized by a shift open.
func (e Entry) IsOpeningAdjustment() bool {
	return e.Category == CategoryOpeningAdjustment
}
