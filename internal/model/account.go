package model

// BankAccount is a currency-denominated account linked to the till.
type BankAccount struct {
	ID                 string
	Alias              string
	BankName           string
	Currency           string
	UsableForSales     bool
	UsableForPurchases bool
	Disabled           bool
}

// DisplayName returns the alias, falling back to the bank name and then the ID.
func (a BankAccount) DisplayName() string {
	switch {
	case a.Alias != "":
		return a.Alias
	case a.BankName != "":
		return a.BankName
	default:
		return a.ID
	}
}
