package transfer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// Endpoint is a resolved transfer side.
type Endpoint struct {
	Target   model.Target
	Name     string
	Currency string
}

// Resolver maps a target to its display name and currency.
type Resolver interface {
	Resolve(target model.Target) (Endpoint, bool)
}

// Request asks to move Amount (in the source currency) from From to To.
type Request struct {
	From            model.Target
	To              model.Target
	Amount          decimal.Decimal
	Rate            decimal.Decimal
	Reference       string
	OperationNumber string
	At              time.Time
	User            string
}

// Operator builds the paired entries of a transfer.
type Operator struct {
	table    *Table
	resolver Resolver
	newID    func() string
}

// NewOperator creates an Operator.
func NewOperator(table *Table, resolver Resolver) *Operator {
	return &Operator{table: table, resolver: resolver, newID: uuid.NewString}
}

// Build validates req and returns the expense on the source and the income on
// the destination. Nothing is written; the caller appends both together.
func (o *Operator) Build(req Request) (debit, credit model.Entry, err error) {
	opNumber := strings.ToUpper(strings.TrimSpace(req.OperationNumber))
	if opNumber == "" {
		return debit, credit, apperrors.Validation("operation_number", "is required")
	}
	if !req.Amount.IsPositive() {
		return debit, credit, apperrors.Validation("amount", "must be greater than zero")
	}

	from, ok := o.resolver.Resolve(req.From)
	if !ok {
		return debit, credit, apperrors.Resolution("from", string(req.From))
	}
	to, ok := o.resolver.Resolve(req.To)
	if !ok {
		return debit, credit, apperrors.Resolution("to", string(req.To))
	}
	if from.Target == to.Target {
		return debit, credit, apperrors.Validation("to", "source and destination are the same")
	}
	if money.HasExcessPrecision(req.Amount, from.Currency) {
		return debit, credit, apperrors.Validation("amount", "%s has more than %d decimal places", req.Amount, money.MinorUnits(from.Currency))
	}

	credited, err := o.table.Convert(req.Amount, req.Rate, from.Currency, to.Currency)
	if err != nil {
		return debit, credit, err
	}
	if !credited.IsPositive() {
		return debit, credit, apperrors.Validation("amount", "converts to %s %s", money.Format(credited, to.Currency), to.Currency)
	}

	ref := strings.TrimSpace(req.Reference)
	transferID := o.newID()

	debit = model.Entry{
		Timestamp:   req.At,
		Direction:   model.Expense,
		Method:      methodFor(from.Target),
		Concept:     concept("OUT", from.Name, "->", to.Name, from.Currency, opNumber, ref),
		Amount:      req.Amount,
		Currency:    from.Currency,
		Category:    model.CategoryTransfer,
		AccountID:   accountID(from.Target),
		ReferenceID: opNumber,
		TransferID:  transferID,
		User:        req.User,
	}
	credit = model.Entry{
		Timestamp:   req.At,
		Direction:   model.Income,
		Method:      methodFor(to.Target),
		Concept:     concept("IN", to.Name, "<-", from.Name, to.Currency, opNumber, ref),
		Amount:      credited,
		Currency:    to.Currency,
		Category:    model.CategoryTransfer,
		AccountID:   accountID(to.Target),
		ReferenceID: opNumber,
		TransferID:  transferID,
		User:        req.User,
	}
	return debit, credit, nil
}

func concept(verb, self, arrow, other, currency, opNumber, ref string) string {
	s := fmt.Sprintf("%s %s %s %s [%s] - OP: %s", verb, self, arrow, other, currency, opNumber)
	if ref != "" {
		s += " - " + ref
	}
	return strings.ToUpper(s)
}

func methodFor(t model.Target) model.Method {
	if t.IsCash() {
		return model.MethodCash
	}
	return model.MethodBankTransfer
}

func accountID(t model.Target) string {
	if t.IsCash() {
		return ""
	}
	return string(t)
}
