package casenet

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencySymbol prefixes formatted amounts
const CurrencySymbol = "₩"

// FormatAmount renders an amount with grouping separators, e.g. ₩1,200,000
func FormatAmount(amount float64) string {
	p := message.NewPrinter(language.English)
	return CurrencySymbol + p.Sprintf("%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}

// HumanizeLinkType turns MADE_TRANSACTION into "Made Transaction"
func HumanizeLinkType(t LinkType) string {
	return cases.Title(language.English).String(strings.ToLower(strings.ReplaceAll(string(t), "_", " ")))
}
