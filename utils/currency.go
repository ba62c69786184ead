package utils

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the scale every persisted amount is rounded to.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to two decimal places.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// FormatMoney renders an amount with exactly two decimals, e.g. "30.00".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPlaces)
}
