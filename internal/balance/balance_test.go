package balance

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/ledger"
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

func entry(ts time.Time, dir model.Direction, account, amount string) model.Entry {
	return model.Entry{
		Timestamp: ts,
		Direction: dir,
		Amount:    dec(amount),
		Currency:  "PEN",
		AccountID: account,
	}
}

func zero(model.Target) decimal.Decimal { return decimal.Zero }

func appendAll(t *testing.T, entries []model.Entry) []model.Entry {
	t.Helper()
	s := ledger.NewMemoryStore()
	for _, e := range entries {
		_, err := s.Append(e)
		require.NoError(t, err)
	}
	return s.Entries()
}

func TestBalance_SignedSum(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "50"),
		entry(at(1), model.Expense, "", "20.50"),
		entry(at(2), model.Income, "BCP", "300"),
		entry(at(3), model.Income, "", "0.25"),
	})
	r := New(entries)

	assert.Equal(t, "129.75", r.Balance(model.Cash, dec("100"), All, time.Time{}).StringFixed(2))
	assert.Equal(t, "300.00", r.Balance("BCP", decimal.Zero, All, time.Time{}).StringFixed(2))
}

func TestBalance_AsOfIsInclusive(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "10"),
		entry(at(5), model.Income, "", "20"),
		entry(at(10), model.Income, "", "30"),
	})
	r := New(entries)

	assert.True(t, r.Balance(model.Cash, decimal.Zero, All, at(5)).Equal(dec("30")))
	assert.True(t, r.Balance(model.Cash, decimal.Zero, All, at(4)).Equal(dec("10")))
	assert.True(t, r.Balance(model.Cash, decimal.Zero, All, at(-1)).IsZero())
}

func TestBalance_Window(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "10"),
		entry(at(1), model.Income, "", "20"),
		entry(at(2), model.Income, "", "30"),
	})
	r := New(entries)

	assert.True(t, r.Balance(model.Cash, decimal.Zero, Window{FromSeq: 2}, time.Time{}).Equal(dec("50")))
	assert.True(t, r.Balance(model.Cash, decimal.Zero, Window{FromSeq: 2, ToSeq: 3}, time.Time{}).Equal(dec("20")))
}

func TestBalance_IndependentOfInsertionOrder(t *testing.T) {
	base := []model.Entry{
		entry(at(0), model.Income, "", "100"),
		entry(at(1), model.Expense, "", "35.10"),
		entry(at(1), model.Income, "BCP", "12"),
		entry(at(2), model.Income, "", "7.77"),
		entry(at(3), model.Expense, "BCP", "5"),
		entry(at(4), model.Expense, "", "0.07"),
		entry(at(6), model.Income, "", "250"),
	}
	reference := New(appendAll(t, base))

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]model.Entry, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		r := New(appendAll(t, shuffled))

		for _, asOf := range []time.Time{at(0), at(1), at(3), at(5), time.Time{}} {
			for _, target := range []model.Target{model.Cash, "BCP"} {
				want := reference.Balance(target, dec("100"), All, asOf)
				got := r.Balance(target, dec("100"), All, asOf)
				assert.True(t, want.Equal(got), "target %s asOf %s: want %s got %s", target, asOf, want, got)
			}
		}
	}
}

func TestBalance_Pure(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "10"),
		entry(at(1), model.Expense, "", "3"),
	})
	r := New(entries)
	first := r.Balance(model.Cash, decimal.Zero, All, time.Time{})
	second := r.Balance(model.Cash, decimal.Zero, All, time.Time{})
	assert.True(t, first.Equal(second))
	assert.Equal(t, entries[0].Seq, r.Entries()[0].Seq)
}

func TestRunning_AccumulatesPerTarget(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "50"),
		entry(at(1), model.Expense, "BCP", "20"),
		entry(at(2), model.Expense, "", "5"),
	})
	openings := func(t model.Target) decimal.Decimal {
		if t.IsCash() {
			return dec("100")
		}
		return dec("500")
	}

	rows := New(entries).Running(openings, All)
	require.Len(t, rows, 3)
	assert.Equal(t, "150.00", rows[0].Balance.StringFixed(2))
	assert.Equal(t, "480.00", rows[1].Balance.StringFixed(2))
	assert.Equal(t, "145.00", rows[2].Balance.StringFixed(2))
}

func TestRunning_AdjustmentSetsBalance(t *testing.T) {
	adj := entry(at(1), model.Income, "", "15")
	adj.Category = model.CategoryOpeningAdjustment
	adj.BalanceAfter = decimal.NewNullDecimal(dec("115"))

	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "0"),
		adj,
		entry(at(2), model.Income, "", "10"),
	})
	openings := func(model.Target) decimal.Decimal { return dec("100") }

	rows := New(entries).Running(openings, All)
	require.Len(t, rows, 3)
	assert.Equal(t, "115.00", rows[1].Balance.StringFixed(2), "marker shows the target, not 100+15 applied twice")
	assert.Equal(t, "125.00", rows[2].Balance.StringFixed(2))

	// Summed replay agrees with the marker.
	assert.True(t, New(entries).Balance(model.Cash, dec("100"), All, time.Time{}).Equal(dec("125")))
}

func TestRunning_Window(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "10"),
		entry(at(1), model.Income, "", "20"),
	})
	rows := New(entries).Running(zero, Window{FromSeq: 2})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Balance.Equal(dec("20")))
}

func TestFilterRows(t *testing.T) {
	entries := appendAll(t, []model.Entry{
		entry(at(0), model.Income, "", "10"),
		entry(at(1), model.Income, "BCP", "20"),
	})
	rows := New(entries).Running(zero, All)
	assert.Len(t, FilterRows(rows, ledger.FilterCash), 1)
	assert.Len(t, FilterRows(rows, ledger.FilterDigital), 1)
	assert.Len(t, FilterRows(rows, ledger.FilterAll), 2)
}
