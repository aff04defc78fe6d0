package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// Header is the CSV header for entries.csv.
const Header = "seq,entry_id,timestamp,direction,method,concept,amount,currency,category,account_id,reference_id,transfer_id,user,balance_after"

const (
	numFields     = 14
	colSeq        = 0
	colEntryID    = 1
	colTimestamp  = 2
	colDirection  = 3
	colMethod     = 4
	colConcept    = 5
	colAmount     = 6
	colCurrency   = 7
	colCategory   = 8
	colAccountID  = 9
	colReference  = 10
	colTransferID = 11
	colUser       = 12
	colBalance    = 13
)

// ReadEntries reads all entries from an entries.csv reader.
func ReadEntries(r io.Reader) ([]model.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var entries []model.Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteEntries writes entries to an entries.csv writer (including header).
func WriteEntries(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// AppendEntries appends entries to an existing entries.csv writer (no header).
func AppendEntries(w io.Writer, entries []model.Entry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	return cw.Error()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e model.Entry) []string {
	row := make([]string, numFields)
	row[colSeq] = strconv.FormatUint(e.Seq, 10)
	row[colEntryID] = e.ID
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339Nano)
	row[colDirection] = string(e.Direction)
	row[colMethod] = string(e.Method)
	row[colConcept] = e.Concept
	row[colAmount] = money.Format(e.Amount, e.Currency)
	row[colCurrency] = e.Currency
	row[colCategory] = e.Category
	row[colAccountID] = e.AccountID
	row[colReference] = e.ReferenceID
	row[colTransferID] = e.TransferID
	row[colUser] = e.User
	if e.BalanceAfter.Valid {
		row[colBalance] = money.Format(e.BalanceAfter.Decimal, e.Currency)
	}
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (model.Entry, error) {
	if len(record) != numFields {
		return model.Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	seq, err := strconv.ParseUint(record[colSeq], 10, 64)
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing seq %q: %w", record[colSeq], err)
	}

	ts, err := time.Parse(time.RFC3339Nano, record[colTimestamp])
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Entry{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var balance decimal.NullDecimal
	if record[colBalance] != "" {
		d, err := decimal.NewFromString(record[colBalance])
		if err != nil {
			return model.Entry{}, fmt.Errorf("parsing balance_after %q: %w", record[colBalance], err)
		}
		balance = decimal.NewNullDecimal(d)
	}

	return model.Entry{
		Seq:          seq,
		ID:           record[colEntryID],
		Timestamp:    ts,
		Direction:    model.Direction(record[colDirection]),
		Method:       model.Method(record[colMethod]),
		Concept:      record[colConcept],
		Amount:       amount,
		Currency:     record[colCurrency],
		Category:     record[colCategory],
		AccountID:    record[colAccountID],
		ReferenceID:  record[colReference],
		TransferID:   record[colTransferID],
		User:         record[colUser],
		BalanceAfter: balance,
	}, nil
}
