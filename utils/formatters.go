package utils

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Spanish locale printer: thousands separated by dots, decimal comma.
var printer = message.NewPrinter(language.EuropeanSpanish)

func decimal(value float64, decimals int) number.Formatter {
	return number.Decimal(value,
		number.MinFractionDigits(decimals),
		number.MaxFractionDigits(decimals),
	)
}

// FormatCurrency renders a numeric value as euros, e.g. "1.234.567 EUR".
func FormatCurrency(value float64, decimals int) string {
	return printer.Sprintf("%v EUR", decimal(value, decimals))
}

// FormatPercentage renders a value already expressed in percent,
// e.g. 15.5 -> "15,5%".
func FormatPercentage(value float64, decimals int) string {
	return printer.Sprintf("%v%%", decimal(value, decimals))
}

// FormatVariation renders a percent variation with an explicit sign,
// e.g. "+15,5%" or "-3,2%".
func FormatVariation(value float64, decimals int) string {
	if value >= 0 {
		return printer.Sprintf("+%v%%", decimal(value, decimals))
	}
	return printer.Sprintf("%v%%", decimal(value, decimals))
}

// Variation returns the percent change from previous to current. A zero
// previous value yields 0 when current is also zero, otherwise ±100.
func Variation(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		if current > 0 {
			return 100
		}
		return -100
	}
	return (current - previous) / math.Abs(previous) * 100
}
