package shift

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/model"
)

// Header is the CSV header for sessions.csv.
const Header = "session_id,status,opened_at,opening_user,opening_seq,expected_opening_cash,counted_opening_cash,opening_cash_difference,system_bank_at_open,confirmed_bank_at_open,opening_notes,closed_at,closing_user,closing_seq,expected_cash_at_close,counted_cash_at_close,cash_difference_at_close,expected_digital_at_close,system_bank_at_close,confirmed_bank_at_close,closing_notes"

const (
	numFields          = 21
	colID              = 0
	colStatus          = 1
	colOpenedAt        = 2
	colOpeningUser     = 3
	colOpeningSeq      = 4
	colExpectedOpening = 5
	colCountedOpening  = 6
	colOpeningDiff     = 7
	colSystemBankOpen  = 8
	colConfirmedOpen   = 9
	colOpeningNotes    = 10
	colClosedAt        = 11
	colClosingUser     = 12
	colClosingSeq      = 13
	colExpectedClose   = 14
	colCountedClose    = 15
	colCloseDiff       = 16
	colExpectedDigital = 17
	colSystemBankClose = 18
	colConfirmedClose  = 19
	colClosingNotes    = 20
)

// MarshalSession converts a Session to a CSV row.
func MarshalSession(s model.Session) []string {
	row := make([]string, numFields)
	row[colID] = s.ID
	row[colStatus] = string(s.Status)
	row[colOpenedAt] = formatTime(s.OpenedAt)
	row[colOpeningUser] = s.OpeningUser
	row[colOpeningSeq] = strconv.FormatUint(s.OpeningSeq, 10)
	row[colExpectedOpening] = s.ExpectedOpeningCash.String()
	row[colCountedOpening] = s.CountedOpeningCash.String()
	row[colOpeningDiff] = s.OpeningCashDifference.String()
	row[colSystemBankOpen] = formatBalances(s.SystemBankBalancesAtOpen)
	row[colConfirmedOpen] = formatBalances(s.ConfirmedBankBalancesAtOpen)
	row[colOpeningNotes] = s.OpeningNotes

	if s.Status == model.SessionClosed {
		row[colClosedAt] = formatTime(s.ClosedAt)
		row[colClosingUser] = s.ClosingUser
		row[colClosingSeq] = strconv.FormatUint(s.ClosingSeq, 10)
		row[colExpectedClose] = s.ExpectedCashAtClose.String()
		row[colCountedClose] = s.CountedCashAtClose.String()
		row[colCloseDiff] = s.CashDifferenceAtClose.String()
		row[colExpectedDigital] = s.ExpectedDigitalAtClose.String()
		row[colSystemBankClose] = formatBalances(s.SystemBankBalancesAtClose)
		row[colConfirmedClose] = formatBalances(s.ConfirmedBankBalancesAtClose)
		row[colClosingNotes] = s.ClosingNotes
	}
	return row
}

// UnmarshalSession converts a CSV row to a Session.
func UnmarshalSession(record []string) (model.Session, error) {
	if len(record) != numFields {
		return model.Session{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	s := model.Session{
		ID:           record[colID],
		Status:       model.SessionStatus(record[colStatus]),
		OpeningUser:  record[colOpeningUser],
		OpeningNotes: record[colOpeningNotes],
	}
	if s.Status != model.SessionOpen && s.Status != model.SessionClosed {
		return model.Session{}, fmt.Errorf("invalid status %q", record[colStatus])
	}

	var err error
	if s.OpenedAt, err = parseTime("opened_at", record[colOpenedAt]); err != nil {
		return model.Session{}, err
	}
	if s.OpeningSeq, err = strconv.ParseUint(record[colOpeningSeq], 10, 64); err != nil {
		return model.Session{}, fmt.Errorf("parsing opening_seq %q: %w", record[colOpeningSeq], err)
	}
	if s.ExpectedOpeningCash, err = parseDecimal("expected_opening_cash", record[colExpectedOpening]); err != nil {
		return model.Session{}, err
	}
	if s.CountedOpeningCash, err = parseDecimal("counted_opening_cash", record[colCountedOpening]); err != nil {
		return model.Session{}, err
	}
	if s.OpeningCashDifference, err = parseDecimal("opening_cash_difference", record[colOpeningDiff]); err != nil {
		return model.Session{}, err
	}
	if s.SystemBankBalancesAtOpen, err = parseBalances("system_bank_at_open", record[colSystemBankOpen]); err != nil {
		return model.Session{}, err
	}
	if s.ConfirmedBankBalancesAtOpen, err = parseBalances("confirmed_bank_at_open", record[colConfirmedOpen]); err != nil {
		return model.Session{}, err
	}

	if s.Status == model.SessionOpen {
		return s, nil
	}

	s.ClosingUser = record[colClosingUser]
	s.ClosingNotes = record[colClosingNotes]
	if s.ClosedAt, err = parseTime("closed_at", record[colClosedAt]); err != nil {
		return model.Session{}, err
	}
	if s.ClosingSeq, err = strconv.ParseUint(record[colClosingSeq], 10, 64); err != nil {
		return model.Session{}, fmt.Errorf("parsing closing_seq %q: %w", record[colClosingSeq], err)
	}
	if s.ExpectedCashAtClose, err = parseDecimal("expected_cash_at_close", record[colExpectedClose]); err != nil {
		return model.Session{}, err
	}
	if s.CountedCashAtClose, err = parseDecimal("counted_cash_at_close", record[colCountedClose]); err != nil {
		return model.Session{}, err
	}
	if s.CashDifferenceAtClose, err = parseDecimal("cash_difference_at_close", record[colCloseDiff]); err != nil {
		return model.Session{}, err
	}
	if s.ExpectedDigitalAtClose, err = parseDecimal("expected_digital_at_close", record[colExpectedDigital]); err != nil {
		return model.Session{}, err
	}
	if s.SystemBankBalancesAtClose, err = parseBalances("system_bank_at_close", record[colSystemBankClose]); err != nil {
		return model.Session{}, err
	}
	if s.ConfirmedBankBalancesAtClose, err = parseBalances("confirmed_bank_at_close", record[colConfirmedClose]); err != nil {
		return model.Session{}, err
	}
	return s, nil
}

// readSessions replays session rows; the last row for an ID wins and IDs keep
// the order they first appeared in.
func readSessions(r io.Reader) ([]model.Session, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading sessions CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var sessions []model.Session
	index := make(map[string]int)
	for i, rec := range records[1:] {
		s, err := UnmarshalSession(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if at, ok := index[s.ID]; ok {
			sessions[at] = s
			continue
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

// formatBalances renders "ACC=500.00;ACC2=10" with keys sorted.
func formatBalances(m map[string]decimal.Decimal) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k].String()
	}
	return strings.Join(parts, ";")
}

func parseBalances(field, s string) (map[string]decimal.Decimal, error) {
	m := make(map[string]decimal.Decimal)
	if s == "" {
		return m, nil
	}
	for _, part := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("parsing %s: malformed pair %q", field, part)
		}
		d, err := parseDecimal(field, v)
		if err != nil {
			return nil, err
		}
		m[k] = d
	}
	return m, nil
}
