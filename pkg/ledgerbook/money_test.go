package ledgerbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsKnownCurrency(t *testing.T) {
	tests := map[string]bool{
		"USD":  true,
		"INR":  true,
		"EUR":  true,
		"usd":  false,
		"XYZ":  false,
		"US":   false,
		"USDT": false,
		"":     false,
	}

	for code, want := range tests {
		assert.Equal(t, want, IsKnownCurrency(code), code)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatAmount(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "$0.01", FormatAmount(decimal.RequireFromString("0.005"), "USD"))
	assert.Equal(t, "¥1,235", FormatAmount(decimal.RequireFromString("1234.5"), "JPY"))
	assert.Equal(t, "12.30", FormatAmount(decimal.RequireFromString("12.3"), "XYZ"))
	assert.Equal(t, "$99.99", FormatFloat(99.99, "USD"))
}

func TestWithinTolerance(t *testing.T) {
	total := decimal.NewFromInt(100)
	assert.True(t, withinTolerance(decimal.RequireFromString("99.99"), total))
	assert.True(t, withinTolerance(decimal.RequireFromString("100.01"), total))
	assert.False(t, withinTolerance(decimal.RequireFromString("99.98"), total))
	assert.Equal(t, "0.3", sumFloats(0.1, 0.2).String())
}
