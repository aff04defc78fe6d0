package httpapi

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
)

// cashCountRequest carries either a total or a face->quantity breakdown,
// e.g. {"denominations": {"100": 2, "0.50": 1}}.
type cashCountRequest struct {
	Total         decimal.NullDecimal `json:"total"`
	Denominations map[string]int64    `json:"denominations"`
}

func (r cashCountRequest) toParams() (cashbox.CashCount, error) {
	counts, err := parseDenominations(r.Denominations)
	if err != nil {
		return cashbox.CashCount{}, err
	}
	return cashbox.CashCount{Total: r.Total, Denominations: counts}, nil
}

func parseDenominations(m map[string]int64) ([]money.Count, error) {
	faces := make([]string, 0, len(m))
	for f := range m {
		faces = append(faces, f)
	}
	sort.Strings(faces)

	var counts []money.Count
	for _, f := range faces {
		face, err := money.Parse("denominations", f)
		if err != nil {
			return nil, err
		}
		if !face.IsPositive() {
			return nil, apperrors.Validation("denominations", "face value %s must be positive", f)
		}
		if m[f] < 0 {
			return nil, apperrors.Validation("denominations", "negative quantity for %s", f)
		}
		counts = append(counts, money.Count{Face: face, Quantity: m[f]})
	}
	return counts, nil
}

type openShiftRequest struct {
	Cash                 cashCountRequest           `json:"cash"`
	DeclaredBankBalances map[string]decimal.Decimal `json:"declared_bank_balances"`
	Notes                string                     `json:"notes"`
	User                 string                     `json:"user"`
	Acknowledge          bool                       `json:"acknowledge"`
}

func (r openShiftRequest) toParams() (cashbox.OpenParams, error) {
	count, err := r.Cash.toParams()
	if err != nil {
		return cashbox.OpenParams{}, err
	}
	return cashbox.OpenParams{
		Cash:                 count,
		DeclaredBankBalances: r.DeclaredBankBalances,
		Notes:                r.Notes,
		User:                 r.User,
		Acknowledge:          r.Acknowledge,
	}, nil
}

type closeShiftRequest struct {
	Cash                 cashCountRequest           `json:"cash"`
	DeclaredBankBalances map[string]decimal.Decimal `json:"declared_bank_balances"`
	ExpectedCash         decimal.NullDecimal        `json:"expected_cash"`
	ExpectedDigital      decimal.NullDecimal        `json:"expected_digital"`
	Notes                string                     `json:"notes"`
	User                 string                     `json:"user"`
	Acknowledge          bool                       `json:"acknowledge"`
}

func (r closeShiftRequest) toParams() (cashbox.CloseParams, error) {
	count, err := r.Cash.toParams()
	if err != nil {
		return cashbox.CloseParams{}, err
	}
	return cashbox.CloseParams{
		Cash:                 count,
		DeclaredBankBalances: r.DeclaredBankBalances,
		ExpectedCash:         r.ExpectedCash,
		ExpectedDigital:      r.ExpectedDigital,
		Notes:                r.Notes,
		User:                 r.User,
		Acknowledge:          r.Acknowledge,
	}, nil
}

type recordEntryRequest struct {
	Direction   string          `json:"direction" binding:"required"`
	Method      string          `json:"method" binding:"required"`
	Concept     string          `json:"concept" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	AccountID   string          `json:"account_id"`
	ReferenceID string          `json:"reference_id"`
	User        string          `json:"user"`
}

func (r recordEntryRequest) toParams() cashbox.RecordParams {
	return cashbox.RecordParams{
		Direction:   model.Direction(r.Direction),
		Method:      model.Method(r.Method),
		Concept:     r.Concept,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Category:    r.Category,
		AccountID:   r.AccountID,
		ReferenceID: r.ReferenceID,
		User:        r.User,
	}
}

type transferRequest struct {
	From            string          `json:"from" binding:"required"`
	To              string          `json:"to" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Rate            decimal.Decimal `json:"rate"`
	Reference       string          `json:"reference"`
	OperationNumber string          `json:"operation_number" binding:"required"`
	User            string          `json:"user"`
}

func (r transferRequest) toParams() cashbox.TransferParams {
	return cashbox.TransferParams{
		From:            r.From,
		To:              r.To,
		Amount:          r.Amount,
		Rate:            r.Rate,
		Reference:       r.Reference,
		OperationNumber: r.OperationNumber,
		User:            r.User,
	}
}

type countRequest struct {
	Denominations map[string]int64 `json:"denominations" binding:"required"`
}

type entryResponse struct {
	ID           string    `json:"id"`
	Seq          uint64    `json:"seq"`
	Timestamp    time.Time `json:"timestamp"`
	Direction    string    `json:"direction"`
	Method       string    `json:"method"`
	Concept      string    `json:"concept"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	Category     string    `json:"category"`
	AccountID    string    `json:"account_id,omitempty"`
	ReferenceID  string    `json:"reference_id,omitempty"`
	TransferID   string    `json:"transfer_id,omitempty"`
	User         string    `json:"user,omitempty"`
	BalanceAfter *string   `json:"balance_after,omitempty"`
}

func toEntryResponse(e model.Entry) entryResponse {
	r := entryResponse{
		ID:          e.ID,
		Seq:         e.Seq,
		Timestamp:   e.Timestamp,
		Direction:   string(e.Direction),
		Method:      string(e.Method),
		Concept:     e.Concept,
		Amount:      money.Format(e.Amount, e.Currency),
		Currency:    e.Currency,
		Category:    e.Category,
		AccountID:   e.AccountID,
		ReferenceID: e.ReferenceID,
		TransferID:  e.TransferID,
		User:        e.User,
	}
	if e.BalanceAfter.Valid {
		s := money.Format(e.BalanceAfter.Decimal, e.Currency)
		r.BalanceAfter = &s
	}
	return r
}

func toEntryResponses(entries []model.Entry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toEntryResponse(e)
	}
	return out
}

type ledgerRowResponse struct {
	entryResponse
	Balance string `json:"balance"`
}

func toLedgerRows(rows []balance.Row) []ledgerRowResponse {
	out := make([]ledgerRowResponse, len(rows))
	for i, r := range rows {
		out[i] = ledgerRowResponse{
			entryResponse: toEntryResponse(r.Entry),
			Balance:       money.Format(r.Balance, r.Entry.Currency),
		}
	}
	return out
}

type summaryResponse struct {
	Target         string `json:"target"`
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	OpeningBalance string `json:"opening_balance"`
	CurrentBalance string `json:"current_balance"`
	AllTimeBalance string `json:"all_time_balance"`
}

func toSummaries(sums []balance.Summary) []summaryResponse {
	out := make([]summaryResponse, len(sums))
	for i, s := range sums {
		out[i] = summaryResponse{
			Target:         string(s.Target),
			Name:           s.Name,
			Currency:       s.Currency,
			OpeningBalance: money.Format(s.OpeningBalance, s.Currency),
			CurrentBalance: money.Format(s.CurrentBalance, s.Currency),
			AllTimeBalance: money.Format(s.AllTimeBalance, s.Currency),
		}
	}
	return out
}

type lineResponse struct {
	Target     string `json:"target"`
	Name       string `json:"name"`
	Currency   string `json:"currency"`
	Declared   string `json:"declared"`
	Expected   string `json:"expected"`
	Difference string `json:"difference"`
}

type discrepancyResponse struct {
	Target   string `json:"target"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
}

type reportResponse struct {
	Phase         string                `json:"phase"`
	Clean         bool                  `json:"clean"`
	Lines         []lineResponse        `json:"lines"`
	Discrepancies []discrepancyResponse `json:"discrepancies"`
}

func toReport(r reconcile.Report) reportResponse {
	out := reportResponse{
		Phase:         string(r.Phase),
		Clean:         r.Clean(),
		Lines:         make([]lineResponse, len(r.Lines)),
		Discrepancies: make([]discrepancyResponse, len(r.Discrepancies)),
	}
	for i, l := range r.Lines {
		out.Lines[i] = lineResponse{
			Target:     string(l.Target),
			Name:       l.Name,
			Currency:   l.Currency,
			Declared:   money.Format(l.Declared, l.Currency),
			Expected:   money.Format(l.Expected, l.Currency),
			Difference: money.Format(l.Difference(), l.Currency),
		}
	}
	for i, d := range r.Discrepancies {
		out.Discrepancies[i] = discrepancyResponse{
			Target:   string(d.Target),
			Name:     d.Name,
			Currency: d.Currency,
			Kind:     string(d.Kind),
			Amount:   money.Format(d.Amount, d.Currency),
		}
	}
	return out
}

type sessionResponse struct {
	ID                    string            `json:"id"`
	Status                string            `json:"status"`
	OpenedAt              time.Time         `json:"opened_at"`
	OpeningUser           string            `json:"opening_user"`
	ExpectedOpeningCash   string            `json:"expected_opening_cash"`
	CountedOpeningCash    string            `json:"counted_opening_cash"`
	OpeningCashDifference string            `json:"opening_cash_difference"`
	ConfirmedBankAtOpen   map[string]string `json:"confirmed_bank_balances_at_open,omitempty"`
	OpeningNotes          string            `json:"opening_notes,omitempty"`
	ClosedAt              *time.Time        `json:"closed_at,omitempty"`
	ClosingUser           string            `json:"closing_user,omitempty"`
	ExpectedCashAtClose   string            `json:"expected_cash_at_close,omitempty"`
	CountedCashAtClose    string            `json:"counted_cash_at_close,omitempty"`
	CashDifferenceAtClose string            `json:"cash_difference_at_close,omitempty"`
	ExpectedDigital       string            `json:"expected_digital_at_close,omitempty"`
	ConfirmedBankAtClose  map[string]string `json:"confirmed_bank_balances_at_close,omitempty"`
	ClosingNotes          string            `json:"closing_notes,omitempty"`
}

func toSession(s model.Session, currency string) sessionResponse {
	r := sessionResponse{
		ID:                    s.ID,
		Status:                string(s.Status),
		OpenedAt:              s.OpenedAt,
		OpeningUser:           s.OpeningUser,
		ExpectedOpeningCash:   money.Format(s.ExpectedOpeningCash, currency),
		CountedOpeningCash:    money.Format(s.CountedOpeningCash, currency),
		OpeningCashDifference: money.Format(s.OpeningCashDifference, currency),
		ConfirmedBankAtOpen:   formatBalances(s.ConfirmedBankBalancesAtOpen),
		OpeningNotes:          s.OpeningNotes,
	}
	if s.IsOpen() {
		return r
	}
	closed := s.ClosedAt
	r.ClosedAt = &closed
	r.ClosingUser = s.ClosingUser
	r.ExpectedCashAtClose = money.Format(s.ExpectedCashAtClose, currency)
	r.CountedCashAtClose = money.Format(s.CountedCashAtClose, currency)
	r.CashDifferenceAtClose = money.Format(s.CashDifferenceAtClose, currency)
	r.ExpectedDigital = money.Format(s.ExpectedDigitalAtClose, currency)
	r.ConfirmedBankAtClose = formatBalances(s.ConfirmedBankBalancesAtClose)
	r.ClosingNotes = s.ClosingNotes
	return r
}

// formatBalances keeps full precision; the account currency is not known here.
func formatBalances(m map[string]decimal.Decimal) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}

type countEntryResponse struct {
	Face     string `json:"face"`
	Quantity int64  `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type countResponse struct {
	Sheet []countEntryResponse `json:"sheet"`
	Total string               `json:"total"`
}

func toCount(r cashbox.CountResult, currency string) countResponse {
	out := countResponse{
		Sheet: make([]countEntryResponse, len(r.Sheet)),
		Total: money.Format(r.Total, currency),
	}
	for i, c := range r.Sheet {
		out.Sheet[i] = countEntryResponse{
			Face:     money.Format(c.Face, currency),
			Quantity: c.Quantity,
			Subtotal: money.Format(c.Subtotal(), currency),
		}
	}
	return out
}
