package dataset

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is shown in place of values that could not be read as numbers.
const NotAvailable = "Data not available"

// Kind selects how a source's values are displayed.
type Kind string

const (
	KindCurrency Kind = "currency"
	KindPercent  Kind = "percent"
)

// Valid reports whether k names a known formatter.
func (k Kind) Valid() bool {
	return k == KindCurrency || k == KindPercent
}

var usPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders v as whole US dollars with thousands separators.
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	r := math.Round(v)
	if r >= math.MinInt64 && r < math.MaxInt64 {
		return "$" + usPrinter.Sprintf("%v", int64(r))
	}
	return "$" + usPrinter.Sprint(number.Decimal(r, number.MaxFractionDigits(0)))
}

// FormatPercent renders v with exactly two decimals and a percent sign.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatterFor returns the display function for k. Unknown kinds fall back
// to currency, which is what the first configured source uses.
func FormatterFor(k Kind) func(float64) string {
	switch k {
	case KindPercent:
		return FormatPercent
	default:
		return FormatCurrency
	}
}
