package util

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places shown to customers.
const MoneyPlaces = 2

// FormatAmount renders an amount with two decimal places. Amounts are kept
// exact internally and rounded only here.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// FormatPrice renders an amount as a dollar price, e.g. "$89.99".
func FormatPrice(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(MoneyPlaces)
	}
	return "$" + d.StringFixed(MoneyPlaces)
}
