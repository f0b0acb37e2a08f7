package domain

import "github.com/shopspring/decimal"

// Totals is the priced summary of a cart. Subtotal and Shipping are whole
// rupiah; Tax and Total may carry a fraction.
type Totals struct {
	Subtotal int64           `json:"subtotal"`
	Shipping int64           `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

func (t Totals) FreeShipping() bool { return t.Shipping == 0 }
