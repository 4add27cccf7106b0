package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FormatMoney renders an amount with two fixed decimals, e.g. "-57.50".
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatPercent renders a claim ratio as a whole percentage, e.g. 0.25 -> "25%".
func FormatPercent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(0) + "%"
}
