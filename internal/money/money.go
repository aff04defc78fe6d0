package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashbox/internal/apperrors"
)

// minorUnits lists ISO 4217 currencies whose minor unit is not two digits.
var minorUnits = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

var symbols = map[string]string{
	"PEN": "S/",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// MinorUnits returns the number of decimal places used by a currency.
func MinorUnits(currency string) int32 {
	if n, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return n
	}
	return 2
}

// MinorUnit returns the smallest representable amount of a currency, e.g. 0.01.
func MinorUnit(currency string) decimal.Decimal {
	return decimal.New(1, -MinorUnits(currency))
}

// Round rounds half away from zero to the currency's minor units.
func Round(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(MinorUnits(currency))
}

// Format renders an amount with the currency's fixed number of decimals.
func Format(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(MinorUnits(currency))
}

// Symbol returns the display symbol for a currency, or the code itself.
func Symbol(currency string) string {
	if s, ok := symbols[strings.ToUpper(currency)]; ok {
		return s
	}
	return strings.ToUpper(currency)
}

// Display renders an amount with its symbol, e.g. "S/ 150.00".
func Display(amount decimal.Decimal, currency string) string {
	return Symbol(currency) + " " + Format(amount, currency)
}

// Parse reads a decimal amount from user input.
func Parse(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, apperrors.Validation(field, "is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, apperrors.Validation(field, "invalid amount %q", s)
	}
	return d, nil
}

// HasExcessPrecision reports whether amount carries more decimals than the
// currency allows.
func HasExcessPrecision(amount decimal.Decimal, currency string) bool {
	return !Round(amount, currency).Equal(amount)
}
