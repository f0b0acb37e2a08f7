package usecase

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders an amount the way the storefront shows prices,
// e.g. "Rp 1.500.000". Fractions are rounded to whole rupiah.
func FormatIDR(amount decimal.Decimal) string {
	return idPrinter.Sprintf("Rp %d", amount.Round(0).IntPart())
}

func FormatIDRInt(amount int64) string {
	return FormatIDR(decimal.NewFromInt(amount))
}
