package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// maxCents is the largest cent amount go-money can hold in an int64.
var maxCents = decimal.NewFromInt(math.MaxInt64)

// FormatUSD renders amount as US dollars, e.g. "$1,234.56" or "-$1,234.56".
// Amounts are rounded half away from zero to whole cents. Non-finite
// amounts render as "$NaN", "$Inf" or "-$Inf".
func FormatUSD(amount float64) string {
	switch {
	case math.IsNaN(amount):
		return "$NaN"
	case math.IsInf(amount, 1):
		return "$Inf"
	case math.IsInf(amount, -1):
		return "-$Inf"
	}

	cents := decimal.NewFromFloat(amount).Round(2).Shift(2)
	if cents.Abs().GreaterThan(maxCents) {
		return formatLargeUSD(cents.Shift(-2))
	}
	return money.New(cents.IntPart(), money.USD).Display()
}

// formatLargeUSD groups the digits of d itself for amounts beyond int64 cents.
func formatLargeUSD(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// formatPercent prints a percentage the way it was entered: 50 -> "50", 33.5 -> "33.5".
func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
