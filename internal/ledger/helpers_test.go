package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/model"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func cashIncome(ts time.Time, amount string) model.Entry {
	return model.Entry{
		Timestamp: ts,
		Direction: model.Income,
		Method:    model.MethodCash,
		Concept:   "SALE",
		Amount:    dec(amount),
		Currency:  "PEN",
		Category:  model.CategoryVariable,
	}
}

func bankExpense(ts time.Time, account, amount string) model.Entry {
	return model.Entry{
		Timestamp:   ts,
		Direction:   model.Expense,
		Method:      model.MethodBankTransfer,
		Concept:     "SUPPLIER",
		Amount:      dec(amount),
		Currency:    "PEN",
		Category:    model.CategoryVariable,
		AccountID:   account,
		ReferenceID: "OP-1",
	}
}

// mockAccounts implements AccountChecker for testing.
type mockAccounts struct {
	ids map[string]bool
}

func (m *mockAccounts) Exists(id string) bool {
	return m.ids[id]
}

func newMockAccounts(ids ...string) *mockAccounts {
	m := &mockAccounts{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}
