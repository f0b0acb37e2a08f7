package usecase

import (
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/shopspring/decimal"
)

const (
	FreeShippingThreshold int64 = 500_000
	RegularShippingFee    int64 = 15_000
	ExpressShippingFee    int64 = 25_000
)

// TaxRate is the 11% VAT applied to the subtotal.
var TaxRate = decimal.RequireFromString("0.11")

// Subtotal sums price x quantity over lines the price book knows.
func Subtotal(lines []domain.CartLine, prices PriceBook) int64 {
	var sum int64
	for _, l := range lines {
		price, ok := prices.Price(l.ProductID)
		if !ok {
			continue
		}
		sum += price * int64(l.Quantity)
	}
	return sum
}

// ShippingFee is zero for an empty cart or a subtotal at or above the free
// shipping threshold, otherwise the flat fee of the method. Unknown methods
// are priced as regular.
func ShippingFee(subtotal int64, empty bool, method domain.ShippingMethod) int64 {
	if empty || subtotal >= FreeShippingThreshold {
		return 0
	}
	if method == domain.ShippingExpress {
		return ExpressShippingFee
	}
	return RegularShippingFee
}

func Tax(subtotal int64) decimal.Decimal {
	return decimal.NewFromInt(subtotal).Mul(TaxRate)
}

// Quote prices a cart. It is a pure function of its inputs.
func Quote(lines []domain.CartLine, prices PriceBook, method domain.ShippingMethod) domain.Totals {
	subtotal := Subtotal(lines, prices)
	shipping := ShippingFee(subtotal, len(lines) == 0, method)
	tax := Tax(subtotal)
	return domain.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    decimal.NewFromInt(subtotal + shipping).Add(tax),
	}
}

// CartSummary is the quote shown on the cart page, before a shipping method
// has been chosen.
func CartSummary(lines []domain.CartLine, prices PriceBook) domain.Totals {
	return Quote(lines, prices, domain.ShippingRegular)
}
