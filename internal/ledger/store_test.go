package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

func TestMemoryStore_AssignsSeq(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, uint64(1), s.NextSeq())

	got, err := s.Append(cashIncome(at(0), "10"), cashIncome(at(1), "20"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(1), got[0].Seq)
	assert.Equal(t, "MOV-000001", got[0].ID)
	assert.Equal(t, "MOV-000002", got[1].ID)

	got, err = s.Append(cashIncome(at(2), "30"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got[0].Seq)
	assert.Equal(t, uint64(4), s.NextSeq())
	assert.Len(t, s.Entries(), 3)
}

func TestMemoryStore_RejectsWholeBatch(t *testing.T) {
	s := NewMemoryStore()
	bad := cashIncome(at(1), "5")
	bad.Currency = ""

	_, err := s.Append(cashIncome(at(0), "10"), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, s.Entries(), "nothing is committed when one entry fails")
}

func TestMemoryStore_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Entry)
	}{
		{"direction", func(e *model.Entry) { e.Direction = "sideways" }},
		{"timestamp", func(e *model.Entry) { e.Timestamp = time.Time{} }},
		{"currency", func(e *model.Entry) { e.Currency = "" }},
		{"negative amount", func(e *model.Entry) { e.Amount = dec("-1") }},
		{"excess precision", func(e *model.Entry) { e.Amount = dec("1.001") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := cashIncome(at(0), "10")
			tt.mutate(&e)
			_, err := NewMemoryStore().Append(e)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	_, err := NewMemoryStore().Append()
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMemoryStore_ZeroAmountAllowed(t *testing.T) {
	// Positive amounts are the caller's rule, not the store's.
	_, err := NewMemoryStore().Append(cashIncome(at(0), "0"))
	assert.NoError(t, err)
}

func TestMemoryStore_EntriesIsACopy(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Append(cashIncome(at(0), "10"))
	require.NoError(t, err)

	entries := s.Entries()
	entries[0].Concept = "CHANGED"
	assert.Equal(t, "SALE", s.Entries()[0].Concept)
}

func TestFileStore_CreatesFileWithHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.Empty(t, s.Entries())

	_, err = s.Append(cashIncome(at(0), "10"), bankExpense(at(1), "BCP-PEN", "4"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "ledger", "entries.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,MOV-000001,"))
}

func TestFileStore_ReopenContinuesSequence(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	_, err = s.Append(cashIncome(at(0), "10"), cashIncome(at(1), "15"))
	require.NoError(t, err)

	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.Len(t, reopened.Entries(), 2)
	assert.Equal(t, uint64(3), reopened.NextSeq())

	got, err := reopened.Append(cashIncome(at(2), "1"))
	require.NoError(t, err)
	assert.Equal(t, "MOV-000003", got[0].ID)

	data, err := os.ReadFile(reopened.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "seq,entry_id"), "header is written once")
}

func TestFileStore_InvalidBatchLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenFileStore(dir)
	require.NoError(t, err)

	bad := cashIncome(at(0), "1.005")
	_, err = s.Append(bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = os.Stat(s.Path())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenFileStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ledger"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ledger", "entries.csv"), []byte(Header+"\n1,MOV-000001,bad\n"), 0o644))

	_, err := OpenFileStore(dir)
	assert.Error(t, err)
}
