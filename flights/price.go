package flights

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders an amount with its currency symbol for display,
// e.g. (120, "EUR") -> "€ 120.00". Unknown currency codes fall back to a
// plain "<amount> <code>" form.
func FormatPrice(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	return pricePrinter.Sprint(currency.Symbol(unit.Amount(amount)))
}
