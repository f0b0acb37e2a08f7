package usecase

import (
	"testing"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priceMap map[int]int64

func (m priceMap) Price(id int) (int64, bool) {
	p, ok := m[id]
	return p, ok
}

func TestQuote(t *testing.T) {
	prices := priceMap{1: 300_000, 2: 50_000, 3: 500_000}

	tests := []struct {
		name     string
		lines    []domain.CartLine
		method   domain.ShippingMethod
		subtotal int64
		shipping int64
		tax      string
		total    string
	}{
		{
			name:     "above threshold ships free",
			lines:    []domain.CartLine{{ProductID: 1, Quantity: 2}},
			method:   domain.ShippingRegular,
			subtotal: 600_000, shipping: 0, tax: "66000", total: "666000",
		},
		{
			name:     "express below threshold",
			lines:    []domain.CartLine{{ProductID: 2, Quantity: 2}},
			method:   domain.ShippingExpress,
			subtotal: 100_000, shipping: 25_000, tax: "11000", total: "136000",
		},
		{
			name:     "regular below threshold",
			lines:    []domain.CartLine{{ProductID: 2, Quantity: 2}},
			method:   domain.ShippingRegular,
			subtotal: 100_000, shipping: 15_000, tax: "11000", total: "126000",
		},
		{
			name:     "exactly the threshold ships free",
			lines:    []domain.CartLine{{ProductID: 3, Quantity: 1}},
			method:   domain.ShippingExpress,
			subtotal: 500_000, shipping: 0, tax: "55000", total: "555000",
		},
		{
			name:     "empty cart",
			method:   domain.ShippingExpress,
			subtotal: 0, shipping: 0, tax: "0", total: "0",
		},
		{
			name:     "unknown product contributes nothing",
			lines:    []domain.CartLine{{ProductID: 99, Quantity: 3}},
			method:   domain.ShippingRegular,
			subtotal: 0, shipping: 15_000, tax: "0", total: "15000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quote(tt.lines, prices, tt.method)
			assert.Equal(t, tt.subtotal, got.Subtotal)
			assert.Equal(t, tt.shipping, got.Shipping)
			assert.True(t, decimal.RequireFromString(tt.tax).Equal(got.Tax), "tax %s", got.Tax)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(got.Total), "total %s", got.Total)
		})
	}
}

func TestTaxKeepsFractions(t *testing.T) {
	assert.Equal(t, "11.11", Tax(101).String())
}

func TestCartSummaryUsesRegularShipping(t *testing.T) {
	prices := priceMap{2: 50_000}
	got := CartSummary([]domain.CartLine{{ProductID: 2, Quantity: 1}}, prices)
	assert.Equal(t, RegularShippingFee, got.Shipping)
}

func TestShippingFeeUnknownMethodIsRegular(t *testing.T) {
	assert.Equal(t, RegularShippingFee, ShippingFee(10, false, domain.ShippingMethod("drone")))
}
