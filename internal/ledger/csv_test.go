package ledger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/model"
)

func TestRoundTrip(t *testing.T) {
	adj := cashIncome(at(0), "12.50")
	adj.Seq, adj.ID = 1, "MOV-000001"
	adj.Category = model.CategoryOpeningAdjustment
	adj.Concept = "OPENING ADJUSTMENT, CASH"
	adj.BalanceAfter = decimal.NewNullDecimal(dec("112.50"))

	out := bankExpense(at(5), "BCP-PEN", "40")
	out.Seq, out.ID = 2, "MOV-000002"
	out.Concept = `SUPPLIER "ACME", INVOICE 7`
	out.TransferID = "6f1c"
	out.User = "ana"

	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, []model.Entry{adj, out}))

	got, err := ReadEntries(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, uint64(1), got[0].Seq)
	assert.True(t, got[0].Timestamp.Equal(adj.Timestamp))
	assert.True(t, got[0].Amount.Equal(dec("12.5")))
	require.True(t, got[0].BalanceAfter.Valid)
	assert.True(t, got[0].BalanceAfter.Decimal.Equal(dec("112.5")))
	assert.True(t, got[0].IsOpeningAdjustment())

	assert.Equal(t, model.Expense, got[1].Direction)
	assert.Equal(t, `SUPPLIER "ACME", INVOICE 7`, got[1].Concept)
	assert.Equal(t, "BCP-PEN", got[1].AccountID)
	assert.Equal(t, "6f1c", got[1].TransferID)
	assert.Equal(t, "ana", got[1].User)
	assert.False(t, got[1].BalanceAfter.Valid)
}

func TestMarshalEntry_FixedDecimals(t *testing.T) {
	e := cashIncome(at(0), "5")
	row := MarshalEntry(e)
	assert.Equal(t, "5.00", row[colAmount])
	assert.Equal(t, "", row[colBalance])
	assert.Equal(t, "2025-03-10T09:00:00Z", row[colTimestamp])
}

func TestReadEntries_Empty(t *testing.T) {
	got, err := ReadEntries(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ReadEntries(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadEntries_BadRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"bad seq", "x,MOV-000001,2025-03-10T09:00:00Z,income,cash,SALE,1.00,PEN,VARIABLE,,,,,"},
		{"bad timestamp", "1,MOV-000001,yesterday,income,cash,SALE,1.00,PEN,VARIABLE,,,,,"},
		{"bad amount", "1,MOV-000001,2025-03-10T09:00:00Z,income,cash,SALE,one,PEN,VARIABLE,,,,,"},
		{"bad balance", "1,MOV-000001,2025-03-10T09:00:00Z,income,cash,SALE,1.00,PEN,VARIABLE,,,,,lots"},
		{"short row", "1,MOV-000001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEntries(strings.NewReader(Header + "\n" + tt.row + "\n"))
			assert.Error(t, err)
		})
	}
}
