package cart

import "github.com/shopspring/decimal"

var (
	// FreeShippingThreshold is the subtotal above which shipping is free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	// ShippingFee applies to non-empty carts at or below the threshold.
	ShippingFee = decimal.RequireFromString("9.99")
	// TaxRate is applied to the subtotal.
	TaxRate = decimal.RequireFromString("0.08")
)

// Summary is the order total shown next to the cart.
type Summary struct {
	Items                 int             `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Shipping              decimal.Decimal `json:"shipping"`
	Tax                   decimal.Decimal `json:"tax"`
	Total                 decimal.Decimal `json:"total"`
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

// Summarize prices a subtotal: flat shipping unless the subtotal exceeds the threshold,
// tax rounded to cents.
func Summarize(subtotal decimal.Decimal, items int) Summary {
	s := Summary{
		Items:                 items,
		Subtotal:              subtotal,
		Shipping:              decimal.Zero,
		FreeShippingRemaining: decimal.Zero,
	}
	if items > 0 && !subtotal.GreaterThan(FreeShippingThreshold) {
		s.Shipping = ShippingFee
		s.FreeShippingRemaining = FreeShippingThreshold.Sub(subtotal)
	}
	s.Tax = subtotal.Mul(TaxRate).Round(2)
	s.Total = subtotal.Add(s.Shipping).Add(s.Tax)
	return s
}
