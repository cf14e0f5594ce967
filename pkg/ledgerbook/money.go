package ledgerbook

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// tolerance is the largest rounding gap accepted between split amounts and
// the transaction total
var tolerance = decimal.New(1, -2)

// IsKnownCurrency reports whether code is an ISO 4217 code known to go-money
func IsKnownCurrency(code string) bool {
	if len(code) != 3 || strings.ToUpper(code) != code {
		return false
	}
	return money.GetCurrency(code) != nil
}

// FormatAmount renders amount in the currency's display format, e.g.
// "₹1,234.50". Unknown currencies fall back to a plain two-decimal string.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatFloat is FormatAmount for wire amounts
func FormatFloat(amount float64, currency string) string {
	return FormatAmount(decimal.NewFromFloat(amount), currency)
}

// sumFloats adds wire amounts exactly
func sumFloats(values ...float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

// withinTolerance reports whether |a-b| <= 0.01
func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}
