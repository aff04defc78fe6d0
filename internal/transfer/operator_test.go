package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

type fakeResolver map[model.Target]Endpoint

func (f fakeResolver) Resolve(t model.Target) (Endpoint, bool) {
	e, ok := f[t]
	return e, ok
}

var at = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestOperator() *Operator {
	r := fakeResolver{
		model.Cash: {Target: model.Cash, Name: "Caja", Currency: "PEN"},
		"BCP":      {Target: "BCP", Name: "BCP Soles", Currency: "PEN"},
		"BBVA-USD": {Target: "BBVA-USD", Name: "BBVA Dolares", Currency: "USD"},
	}
	op := NewOperator(DefaultTable("PEN"), r)
	op.newID = func() string { return "T-1" }
	return op
}

func request(from, to model.Target, amount, rate string) Request {
	return Request{
		From:            from,
		To:              to,
		Amount:          dec(amount),
		Rate:            dec(rate),
		Reference:       "deposit",
		OperationNumber: "op-778",
		At:              at,
		User:            "ana",
	}
}

func TestBuild_SameCurrency(t *testing.T) {
	debit, credit, err := newTestOperator().Build(request(model.Cash, "BCP", "250", "1"))
	require.NoError(t, err)

	assert.Equal(t, model.Expense, debit.Direction)
	assert.Equal(t, model.MethodCash, debit.Method)
	assert.Equal(t, "", debit.AccountID)
	assert.Equal(t, "PEN", debit.Currency)
	assert.Equal(t, "250.00", debit.Amount.StringFixed(2))

	assert.Equal(t, model.Income, credit.Direction)
	assert.Equal(t, model.MethodBankTransfer, credit.Method)
	assert.Equal(t, "BCP", credit.AccountID)
	assert.True(t, credit.Amount.Equal(debit.Amount))

	assert.Equal(t, "OP-778", debit.ReferenceID)
	assert.Equal(t, debit.ReferenceID, credit.ReferenceID)
	assert.Equal(t, "T-1", debit.TransferID)
	assert.Equal(t, debit.TransferID, credit.TransferID)
	assert.Equal(t, model.CategoryTransfer, debit.Category)
	assert.Equal(t, model.CategoryTransfer, credit.Category)
	assert.Equal(t, "OUT CAJA -> BCP SOLES [PEN] - OP: OP-778 - DEPOSIT", debit.Concept)
	assert.Equal(t, "IN BCP SOLES <- CAJA [PEN] - OP: OP-778 - DEPOSIT", credit.Concept)
	assert.Equal(t, "ana", credit.User)
	assert.True(t, credit.Timestamp.Equal(at))
}

func TestBuild_UsdToBase(t *testing.T) {
	debit, credit, err := newTestOperator().Build(request("BBVA-USD", "BCP", "100", "3.75"))
	require.NoError(t, err)

	assert.Equal(t, "100.00", debit.Amount.StringFixed(2))
	assert.Equal(t, "USD", debit.Currency)
	assert.Equal(t, "375.00", credit.Amount.StringFixed(2))
	assert.Equal(t, "PEN", credit.Currency)
	assert.Contains(t, debit.Concept, "[USD]")
	assert.Contains(t, credit.Concept, "[PEN]")
}

func TestBuild_BaseToUsd(t *testing.T) {
	_, credit, err := newTestOperator().Build(request(model.Cash, "BBVA-USD", "375", "3.75"))
	require.NoError(t, err)
	assert.Equal(t, "100.00", credit.Amount.StringFixed(2))
}

func TestBuild_NoReference(t *testing.T) {
	req := request(model.Cash, "BCP", "10", "1")
	req.Reference = ""
	debit, _, err := newTestOperator().Build(req)
	require.NoError(t, err)
	assert.Equal(t, "OUT CAJA -> BCP SOLES [PEN] - OP: OP-778", debit.Concept)
}

func TestBuild_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		kind   error
	}{
		{"empty operation number", func(r *Request) { r.OperationNumber = "  " }, apperrors.ErrValidation},
		{"zero amount", func(r *Request) { r.Amount = dec("0") }, apperrors.ErrValidation},
		{"negative amount", func(r *Request) { r.Amount = dec("-5") }, apperrors.ErrValidation},
		{"unknown source", func(r *Request) { r.From = "NOPE" }, apperrors.ErrResolution},
		{"unknown destination", func(r *Request) { r.To = "NOPE" }, apperrors.ErrResolution},
		{"same target", func(r *Request) { r.To = r.From }, apperrors.ErrValidation},
		{"missing rate across currencies", func(r *Request) { r.To = "BBVA-USD"; r.Rate = dec("0") }, apperrors.ErrValidation},
		{"sub-cent amount", func(r *Request) { r.Amount = dec("1.001") }, apperrors.ErrValidation},
		{"converts to nothing", func(r *Request) { r.To = "BBVA-USD"; r.Amount = dec("0.01"); r.Rate = dec("3.75") }, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(model.Cash, "BCP", "10", "1")
			tt.mutate(&req)
			_, _, err := newTestOperator().Build(req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
