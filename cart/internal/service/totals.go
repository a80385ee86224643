package service

import (
	"github.com/shopspring/decimal"

	"github.com/ornamently/jewelify/cart/pkg/response"
)

// TaxRate is the flat storefront tax applied to the cart subtotal. It is not
// configurable per item or category.
var TaxRate = decimal.RequireFromString("0.05")

// RecomputeTotals derives the cart totals from its line items alone. Every
// mutating operation must call it before persisting; a stored total is never
// trusted independently of the item list. Tax is quantized to cents so the
// computed totals survive the NUMERIC(12, 2) round trip unchanged.
func RecomputeTotals(
	items []response.CartItem,
) (totalItems int32, subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	tax = subtotal.Mul(TaxRate).Round(2)
	total = subtotal.Add(tax)
	return totalItems, subtotal, tax, total
}

func applyTotals(cart *response.Cart) {
	cart.TotalItems, cart.Subtotal, cart.Tax, cart.Total = RecomputeTotals(cart.CartItems)
}
