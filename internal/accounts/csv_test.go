package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/cashbox/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.BankAccount{
		{ID: "BCP-PEN", Alias: "BCP Soles", BankName: "BCP", Currency: "PEN", UsableForSales: true, UsableForPurchases: true},
		{ID: "BBVA-USD", Alias: "BBVA, Dolares", BankName: "BBVA", Currency: "USD", UsableForPurchases: true, Disabled: true},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, accounts, got)
}

func TestUnmarshalAccount_EmptyFlags(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"IBK", "", "Interbank", "PEN", "", "", ""})
	require.NoError(t, err)
	assert.False(t, acct.UsableForSales)
	assert.False(t, acct.Disabled)
	assert.Equal(t, "Interbank", acct.DisplayName())
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	_, err := UnmarshalAccount([]string{"IBK", "", "Interbank", "PEN", "maybe", "", ""})
	assert.Error(t, err)

	_, err = ReadAccounts(strings.NewReader("account_id,alias\nIBK,x\n"))
	assert.Error(t, err)
}
