package render

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatAmount formats d in the given currency, e.g. "$1,234.50" or
// "-$3.00". Unknown currency codes fall back to a plain two-place number
// followed by the code.
func FormatAmount(d decimal.Decimal, currency string) string {
	code := strings.ToUpper(currency)
	if money.GetCurrency(code) == nil {
		return d.StringFixed(2) + " " + code
	}
	cur := *money.New(0, code).Currency()
	fraction := int32(cur.Fraction)
	return cur.Formatter().Format(d.Round(fraction).Shift(fraction).IntPart())
}
