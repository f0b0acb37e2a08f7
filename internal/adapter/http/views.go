package http

import (
	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/shopspring/decimal"
)

type productView struct {
	domain.Product
	PriceText string `json:"priceText"`
	InStock   bool   `json:"inStock"`
	LowStock  bool   `json:"lowStock"`
}

func newProductView(p domain.Product) productView {
	return productView{
		Product:   p,
		PriceText: usecase.FormatIDRInt(p.Price),
		InStock:   p.InStock(),
		LowStock:  p.LowStock(),
	}
}

func newProductViews(ps []domain.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProductView(p))
	}
	return out
}

type totalsView struct {
	Subtotal     int64           `json:"subtotal"`
	Shipping     int64           `json:"shipping"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping bool            `json:"freeShipping"`
	SubtotalText string          `json:"subtotalText"`
	ShippingText string          `json:"shippingText"`
	TaxText      string          `json:"taxText"`
	TotalText    string          `json:"totalText"`
}

func newTotalsView(t domain.Totals) totalsView {
	shipping := "Gratis"
	if !t.FreeShipping() {
		shipping = usecase.FormatIDRInt(t.Shipping)
	}
	return totalsView{
		Subtotal:     t.Subtotal,
		Shipping:     t.Shipping,
		Tax:          t.Tax,
		Total:        t.Total,
		FreeShipping: t.FreeShipping(),
		SubtotalText: usecase.FormatIDRInt(t.Subtotal),
		ShippingText: shipping,
		TaxText:      usecase.FormatIDR(t.Tax),
		TotalText:    usecase.FormatIDR(t.Total),
	}
}

type cartLineView struct {
	ProductID     int    `json:"productId"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Image         string `json:"image"`
	Price         int64  `json:"price"`
	PriceText     string `json:"priceText"`
	Quantity      int    `json:"quantity"`
	LineTotal     int64  `json:"lineTotal"`
	LineTotalText string `json:"lineTotalText"`
}

type cartView struct {
	Lines     []cartLineView `json:"lines"`
	LineCount int            `json:"lineCount"`
	ItemCount int            `json:"itemCount"`
	Totals    totalsView     `json:"totals"`
}

func newCartLineViews(cart *usecase.Cart, catalog *usecase.Catalog) []cartLineView {
	lines := make([]cartLineView, 0, cart.Len())
	for _, l := range cart.Lines() {
		p, ok := catalog.Get(l.ProductID)
		if !ok {
			continue
		}
		total := p.Price * int64(l.Quantity)
		lines = append(lines, cartLineView{
			ProductID:     p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Image:         p.Image,
			Price:         p.Price,
			PriceText:     usecase.FormatIDRInt(p.Price),
			Quantity:      l.Quantity,
			LineTotal:     total,
			LineTotalText: usecase.FormatIDRInt(total),
		})
	}
	return lines
}

// newCartView prices the cart the way the cart page does, with regular
// shipping.
func newCartView(cart *usecase.Cart, catalog *usecase.Catalog) cartView {
	return cartView{
		Lines:     newCartLineViews(cart, catalog),
		LineCount: cart.Len(),
		ItemCount: cart.ItemCount(),
		Totals:    newTotalsView(usecase.CartSummary(cart.Lines(), catalog)),
	}
}

type checkoutView struct {
	Step         int               `json:"step"`
	StepName     string            `json:"stepName"`
	Form         usecase.Form      `json:"form"`
	Errors       map[string]string `json:"errors"`
	Lines        []cartLineView    `json:"lines"`
	Totals       totalsView        `json:"totals"`
	ShippingETA  string            `json:"shippingEta"`
	PaymentLabel string            `json:"paymentLabel"`
}

func newCheckoutView(co *usecase.Checkout, cart *usecase.Cart, svc *usecase.CheckoutService, catalog *usecase.Catalog) checkoutView {
	f := co.Form()
	return checkoutView{
		Step:         int(co.Step()),
		StepName:     co.Step().String(),
		Form:         maskCard(f),
		Errors:       co.Errors(),
		Lines:        newCartLineViews(cart, catalog),
		Totals:       newTotalsView(svc.Quote(cart, co)),
		ShippingETA:  f.ShippingMethod.ETA(),
		PaymentLabel: f.PaymentMethod.DisplayLabel(),
	}
}

// maskCard keeps card data out of responses; only the last four digits of
// the number are echoed.
func maskCard(f usecase.Form) usecase.Form {
	if n := len(f.CardNumber); n > 4 {
		f.CardNumber = "**** " + f.CardNumber[n-4:]
	}
	if f.CardCVC != "" {
		f.CardCVC = "***"
	}
	return f
}
