package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

func TestSorted_TimestampThenSeq(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Append(
		cashIncome(at(10), "1"),
		cashIncome(at(5), "2"),
		cashIncome(at(5), "3"),
		cashIncome(at(0), "4"),
	)
	require.NoError(t, err)

	sorted := Sorted(s.Entries())
	var seqs []uint64
	for _, e := range sorted {
		seqs = append(seqs, e.Seq)
	}
	assert.Equal(t, []uint64{4, 2, 3, 1}, seqs)
	assert.Equal(t, uint64(1), s.Entries()[0].Seq, "input order is untouched")
}

func TestByTarget(t *testing.T) {
	entries := []model.Entry{
		cashIncome(at(0), "1"),
		bankExpense(at(1), "BCP-PEN", "2"),
		bankExpense(at(2), "BBVA-USD", "3"),
		cashIncome(at(3), "4"),
	}
	assert.Len(t, ByTarget(entries, model.Cash), 2)
	bcp := ByTarget(entries, "BCP-PEN")
	require.Len(t, bcp, 1)
	assert.True(t, bcp[0].Amount.Equal(dec("2")))
	assert.Empty(t, ByTarget(entries, "NOPE"))
}

func TestByTimeRange(t *testing.T) {
	entries := []model.Entry{
		cashIncome(at(0), "1"),
		cashIncome(at(10), "2"),
		cashIncome(at(20), "3"),
	}
	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{"both bounds inclusive", at(0), at(20), 3},
		{"inner window", at(5), at(15), 1},
		{"open upper bound", at(10), time.Time{}, 2},
		{"open lower bound", time.Time{}, at(10), 2},
		{"unbounded", time.Time{}, time.Time{}, 3},
		{"empty window", at(11), at(19), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ByTimeRange(entries, tt.from, tt.to), tt.want)
		})
	}
}

func TestSeqRange(t *testing.T) {
	var entries []model.Entry
	for i := uint64(1); i <= 5; i++ {
		e := cashIncome(at(int(i)), "1")
		e.Seq = i
		entries = append(entries, e)
	}
	assert.Len(t, SeqRange(entries, 2, 4), 2)
	assert.Len(t, SeqRange(entries, 3, 0), 3)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		input string
		want  Filter
	}{
		{"", FilterAll},
		{"all", FilterAll},
		{"Cash", FilterCash},
		{" DIGITAL ", FilterDigital},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFilter("card")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestFilterMatch(t *testing.T) {
	cash := cashIncome(at(0), "1")
	bank := bankExpense(at(0), "BCP-PEN", "1")

	assert.True(t, FilterAll.Match(cash))
	assert.True(t, FilterAll.Match(bank))
	assert.True(t, FilterCash.Match(cash))
	assert.False(t, FilterCash.Match(bank))
	assert.False(t, FilterDigital.Match(cash))
	assert.True(t, FilterDigital.Match(bank))
}
