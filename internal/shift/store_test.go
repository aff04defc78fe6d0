package shift

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/model"
)

func TestFileStore_RoundTripThroughMachine(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)

	m := NewMachine(store, dec("100"))
	_, err = m.Open(opening("100.50"))
	require.NoError(t, err)
	_, err = m.Close(closing("150", "150"))
	require.NoError(t, err)
	_, err = m.Open(opening("150"))
	require.NoError(t, err)

	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	sessions := reopened.Sessions()
	require.Len(t, sessions, 2, "last row per ID wins")

	first := sessions[0]
	assert.Equal(t, "SES-0001", first.ID)
	assert.Equal(t, model.SessionClosed, first.Status)
	assert.True(t, first.CountedOpeningCash.Equal(dec("100.5")))
	assert.True(t, first.CountedCashAtClose.Equal(dec("150")))
	assert.True(t, first.ConfirmedBankBalancesAtOpen["BCP"].Equal(dec("500")))
	assert.True(t, first.OpenedAt.Equal(t0))
	assert.Equal(t, "evening", first.ClosingNotes)

	second := sessions[1]
	assert.True(t, second.IsOpen())
	assert.True(t, second.ClosedAt.IsZero())

	m2 := NewMachine(reopened, dec("100"))
	cur, ok := m2.Current()
	require.True(t, ok)
	assert.Equal(t, "SES-0002", cur.ID)

	data, err := os.ReadFile(filepath.Join(dir, "ledger", "sessions.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4, "header + open + close + open")
}

func TestFileStore_NotesWithCommas(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenFileStore(dir)
	require.NoError(t, err)

	o := opening("100")
	o.Notes = `drawer stuck, "fixed" later`
	_, err = NewMachine(store, dec("100")).Open(o)
	require.NoError(t, err)

	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, `drawer stuck, "fixed" later`, reopened.Sessions()[0].OpeningNotes)
}

func TestUnmarshalSession_Errors(t *testing.T) {
	good := MarshalSession(model.Session{ID: "SES-0001", Status: model.SessionOpen, OpenedAt: t0})
	_, err := UnmarshalSession(good)
	require.NoError(t, err)

	bad := append([]string(nil), good...)
	bad[colStatus] = "PAUSED"
	_, err = UnmarshalSession(bad)
	assert.Error(t, err)

	bad = append([]string(nil), good...)
	bad[colConfirmedOpen] = "BCP500"
	_, err = UnmarshalSession(bad)
	assert.Error(t, err)

	_, err = UnmarshalSession(good[:3])
	assert.Error(t, err)
}

func TestFormatBalances_Sorted(t *testing.T) {
	got := formatBalances(map[string]decimal.Decimal{"B": dec("2"), "A": dec("1.50")})
	assert.Equal(t, "A=1.5;B=2", got)
}
