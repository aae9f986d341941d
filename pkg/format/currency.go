// Package format renders quote figures for display.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency returns a whole-dollar string with a dollar sign and thousands
// separators, rounding half away from zero (e.g., 1234.56 -> "$1,235").
func Currency(amount float64) string {
	dollars := int64(math.Round(math.Abs(amount)))
	if amount < 0 && dollars != 0 {
		return printer.Sprintf("-$%d", dollars)
	}
	return printer.Sprintf("$%d", dollars)
}

// CurrencyCents returns a currency string with cents (e.g., "-$1,234.56").
func CurrencyCents(amount float64) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	sign := ""
	if amount < 0 && cents != 0 {
		sign = "-"
	}
	return sign + "$" + printer.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}

// Percentage renders a rate with two fixed decimals and a trailing percent
// sign (e.g., 10 -> "10.00%").
func Percentage(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate)
}
