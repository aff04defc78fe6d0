package cashbox

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/activitylog"
	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/transfer"
)

// RecordParams are the inputs of RecordEntry. An empty AccountID records
// against the cash till; Currency defaults to the target's currency.
type RecordParams struct {
	Direction   model.Direction `json:"direction" validate:"required,oneof=income expense"`
	Method      model.Method    `json:"method" validate:"required"`
	Concept     string          `json:"concept" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	AccountID   string          `json:"account_id"`
	ReferenceID string          `json:"reference_id"`
	User        string          `json:"user"`
}

// TransferParams are the inputs of TransferFunds. Rate is required only when
// the two sides differ in currency.
type TransferParams struct {
	From            string          `json:"from" validate:"required"`
	To              string          `json:"to" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"rate"`
	Reference       string          `json:"reference"`
	OperationNumber string          `json:"operation_number" validate:"required"`
	User            string          `json:"user"`
}

// TransferResult holds both sides of a transfer.
type TransferResult struct {
	Debit  model.Entry
	Credit model.Entry
}

// RecordEntry appends a single income or expense. Entries may be recorded
// with no shift open.
func (s *Service) RecordEntry(p RecordParams) (model.Entry, error) {
	p.Concept = strings.TrimSpace(p.Concept)
	p.Method = model.Method(strings.ToLower(strings.TrimSpace(string(p.Method))))
	p.Direction = model.Direction(strings.ToLower(strings.TrimSpace(string(p.Direction))))
	if err := checkStruct(p); err != nil {
		return model.Entry{}, err
	}
	if !p.Amount.IsPositive() {
		return model.Entry{}, apperrors.Validation("amount", "must be greater than zero")
	}

	category := strings.ToUpper(strings.TrimSpace(p.Category))
	switch category {
	case "":
		category = model.CategoryVariable
	case model.CategoryOpeningAdjustment, model.CategoryTransfer:
		return model.Entry{}, apperrors.Validation("category", "%s is reserved", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := model.Entry{
		Timestamp:   s.now(),
		Direction:   p.Direction,
		Method:      p.Method,
		Concept:     strings.ToUpper(p.Concept),
		Amount:      p.Amount,
		Category:    category,
		ReferenceID: strings.ToUpper(strings.TrimSpace(p.ReferenceID)),
		User:        s.user(p.User),
	}

	currency := s.base
	accountID := strings.TrimSpace(p.AccountID)
	if model.ParseTarget(accountID).IsCash() {
		if p.Method != model.MethodCash {
			return model.Entry{}, apperrors.Validation("account_id", "is required for %s", p.Method)
		}
	} else {
		if p.Method == model.MethodCash {
			return model.Entry{}, apperrors.Validation("method", "cash entries cannot name an account")
		}
		acct, ok := s.accounts.Get(accountID)
		if !ok {
			return model.Entry{}, apperrors.Resolution("account_id", accountID)
		}
		if acct.Disabled {
			return model.Entry{}, apperrors.Validation("account_id", "%s is disabled", acct.ID)
		}
		if e.ReferenceID == "" {
			return model.Entry{}, apperrors.Validation("reference_id", "is required for %s", p.Method)
		}
		e.AccountID = acct.ID
		currency = acct.Currency
	}
	if c := strings.ToUpper(strings.TrimSpace(p.Currency)); c != "" && c != currency {
		return model.Entry{}, apperrors.Validation("currency", "%s does not match %s", c, currency)
	}
	e.Currency = currency
	if money.HasExcessPrecision(e.Amount, currency) {
		return model.Entry{}, apperrors.Validation("amount", "%s has more than %d decimal places", e.Amount, money.MinorUnits(currency))
	}

	written, err := s.ledger.Append(e)
	if err != nil {
		return model.Entry{}, fmt.Errorf("recording entry: %w", err)
	}
	e = written[0]
	s.countAppended(written)

	sessionID := s.sessionOf(e.Seq)
	s.log.Info("entry recorded",
		zap.String("entry_id", e.ID),
		zap.String("direction", string(e.Direction)),
		zap.String("target", string(e.Target())),
		zap.String("amount", money.Format(e.Amount, e.Currency)),
		zap.String("currency", e.Currency),
		zap.Bool("in_shift", sessionID != ""),
	)
	s.record(activitylog.Entry{
		Timestamp:     e.Timestamp,
		User:          e.User,
		Action:        activitylog.ActionRecordEntry,
		Details:       fmt.Sprintf("%s %s %s", e.Direction, money.Display(e.Amount, e.Currency), e.Concept),
		SessionID:     sessionID,
		EntryID:       e.ID,
		CorrelationID: s.newID(),
	})
	return e, nil
}

// TransferFunds moves money between the till and bank accounts, converting
// currency when needed. Both entries are written together or not at all.
func (s *Service) TransferFunds(p TransferParams) (TransferResult, error) {
	if err := checkStruct(p); err != nil {
		return TransferResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.user(p.User)
	debit, credit, err := s.operator.Build(transfer.Request{
		From:            model.ParseTarget(p.From),
		To:              model.ParseTarget(p.To),
		Amount:          p.Amount,
		Rate:            p.Rate,
		Reference:       p.Reference,
		OperationNumber: p.OperationNumber,
		At:              s.now(),
		User:            user,
	})
	if err != nil {
		return TransferResult{}, err
	}

	written, err := s.ledger.Append(debit, credit)
	if err != nil {
		return TransferResult{}, fmt.Errorf("recording transfer: %w", err)
	}
	res := TransferResult{Debit: written[0], Credit: written[1]}
	s.countAppended(written)
	s.metrics.TransferCompleted()

	sessionID := s.sessionOf(res.Debit.Seq)
	s.log.Info("transfer recorded",
		zap.String("transfer_id", res.Debit.TransferID),
		zap.String("from", string(res.Debit.Target())),
		zap.String("to", string(res.Credit.Target())),
		zap.String("debited", money.Format(res.Debit.Amount, res.Debit.Currency)),
		zap.String("credited", money.Format(res.Credit.Amount, res.Credit.Currency)),
	)
	s.record(
		activitylog.Entry{
			Timestamp:     res.Debit.Timestamp,
			User:          user,
			Action:        activitylog.ActionTransfer,
			Details:       res.Debit.Concept,
			SessionID:     sessionID,
			EntryID:       res.Debit.ID,
			CorrelationID: res.Debit.TransferID,
		},
		activitylog.Entry{
			Timestamp:     res.Credit.Timestamp,
			User:          user,
			Action:        activitylog.ActionTransfer,
			Details:       res.Credit.Concept,
			SessionID:     sessionID,
			EntryID:       res.Credit.ID,
			CorrelationID: res.Credit.TransferID,
		},
	)
	return res, nil
}
