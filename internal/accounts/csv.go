package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/cleared-dev/cashbox/internal/model"
)

const (
	numFields      = 7
	colID          = 0
	colAlias       = 1
	colBankName    = 2
	colCurrency    = 3
	colForSales    = 4
	colForPurchase = 5
	colDisabled    = 6
)

// ReadAccounts reads bank-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.BankAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.BankAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes bank-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.BankAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"account_id", "alias", "bank_name", "currency", "usable_for_sales", "usable_for_purchases", "disabled"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts a BankAccount to a CSV row.
func MarshalAccount(acct model.BankAccount) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colAlias] = acct.Alias
	row[colBankName] = acct.BankName
	row[colCurrency] = acct.Currency
	row[colForSales] = strconv.FormatBool(acct.UsableForSales)
	row[colForPurchase] = strconv.FormatBool(acct.UsableForPurchases)
	row[colDisabled] = strconv.FormatBool(acct.Disabled)
	return row
}

// UnmarshalAccount converts a CSV row to a BankAccount.
func UnmarshalAccount(record []string) (model.BankAccount, error) {
	if len(record) != numFields {
		return model.BankAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	flags := make([]bool, 3)
	for i, col := range []int{colForSales, colForPurchase, colDisabled} {
		if record[col] == "" {
			continue
		}
		b, err := strconv.ParseBool(record[col])
		if err != nil {
			return model.BankAccount{}, fmt.Errorf("parsing flag %q for %s: %w", record[col], record[colID], err)
		}
		flags[i] = b
	}

	return model.BankAccount{
		ID:                 record[colID],
		Alias:              record[colAlias],
		BankName:           record[colBankName],
		Currency:           record[colCurrency],
		UsableForSales:     flags[0],
		UsableForPurchases: flags[1],
		Disabled:           flags[2],
	}, nil
}
