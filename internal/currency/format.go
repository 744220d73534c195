package currency

import (
	"fmt"
	"unicode"

	xcurrency "golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var groupPrinter = message.NewPrinter(language.English)

// Format renders an amount given in minor units with the currency's ISO 4217
// scale: 123456 is "$1,234.56" for USD and "¥123,456" for JPY. Letter-only
// symbols such as "CHF" are separated from the number by a space.
func (c Config) Format(minor int64) string {
	scale := 2
	if unit, err := xcurrency.ParseISO(c.Code); err == nil {
		scale, _ = xcurrency.Standard.Rounding(unit)
	}
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	div := int64(1)
	for i := 0; i < scale; i++ {
		div *= 10
	}
	out := groupPrinter.Sprintf("%d", minor/div)
	if scale > 0 {
		out += fmt.Sprintf(".%0*d", scale, minor%div)
	}

	symbol := c.Symbol
	if symbol == "" {
		symbol = c.Code
	}
	if r := []rune(symbol); unicode.IsLetter(r[len(r)-1]) {
		symbol += " "
	}
	return sign + symbol + out
}
