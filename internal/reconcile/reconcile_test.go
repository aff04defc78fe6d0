package reconcile

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func line(target, currency, declared, expected string) Line {
	return Line{
		Target:   model.Target(target),
		Name:     target,
		Currency: currency,
		Declared: dec(declared),
		Expected: dec(expected),
	}
}

func TestReconcile_Classification(t *testing.T) {
	e := NewEngine(decimal.NullDecimal{})
	report := e.Reconcile(PhaseOpen, []Line{
		line("CASH", "PEN", "105.00", "100.00"),
		line("BCP", "PEN", "480.00", "500.00"),
		line("BBVA", "USD", "10.00", "10.00"),
	})

	require.Len(t, report.Lines, 3)
	require.Len(t, report.Discrepancies, 2)
	assert.False(t, report.Clean())

	assert.Equal(t, Surplus, report.Discrepancies[0].Kind)
	assert.Equal(t, "5.00", report.Discrepancies[0].Amount.StringFixed(2))
	assert.Equal(t, Shortage, report.Discrepancies[1].Kind)
	assert.Equal(t, "20.00", report.Discrepancies[1].Amount.StringFixed(2))
	assert.Equal(t, "-20.00", report.Discrepancies[1].Difference.StringFixed(2))
}

func TestReconcile_ThresholdIsStrict(t *testing.T) {
	e := NewEngine(decimal.NullDecimal{})
	tests := []struct {
		declared, expected string
		reported           bool
	}{
		{"100.01", "100.00", false},
		{"99.99", "100.00", false},
		{"100.02", "100.00", true},
		{"99.98", "100.00", true},
		{"100.00", "100.00", false},
	}
	for _, tt := range tests {
		report := e.Reconcile(PhaseClose, []Line{line("CASH", "PEN", tt.declared, tt.expected)})
		assert.Equal(t, tt.reported, !report.Clean(), "declared %s expected %s", tt.declared, tt.expected)
	}
}

func TestThreshold_PerCurrency(t *testing.T) {
	e := NewEngine(decimal.NullDecimal{})
	assert.True(t, e.Threshold("PEN").Equal(dec("0.01")))
	assert.True(t, e.Threshold("JPY").Equal(dec("1")))
	assert.True(t, e.Threshold("KWD").Equal(dec("0.001")))

	report := e.Reconcile(PhaseOpen, []Line{line("YEN", "JPY", "1001", "1000")})
	assert.True(t, report.Clean(), "one yen is within tolerance")
}

func TestThreshold_Configured(t *testing.T) {
	e := NewEngine(decimal.NewNullDecimal(dec("0.50")))
	assert.True(t, e.Threshold("JPY").Equal(dec("0.5")))

	report := e.Reconcile(PhaseOpen, []Line{
		line("CASH", "PEN", "100.50", "100"),
		line("BCP", "PEN", "100.51", "100"),
	})
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, model.Target("BCP"), report.Discrepancies[0].Target)
}

func TestWarning(t *testing.T) {
	e := NewEngine(decimal.NullDecimal{})
	report := e.Reconcile(PhaseOpen, []Line{line("CASH", "PEN", "90", "100")})

	var err error = &Warning{Report: report}
	assert.ErrorIs(t, err, apperrors.ErrReconciliation)
	assert.Contains(t, err.Error(), "CASH SHORTAGE S/ 10.00")

	var w *Warning
	require.True(t, errors.As(err, &w))
	assert.Equal(t, PhaseOpen, w.Report.Phase)
}
