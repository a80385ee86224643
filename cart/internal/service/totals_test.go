package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ornamently/jewelify/cart/pkg/response"
)

func TestRecomputeTotals(t *testing.T) {
	tests := []struct {
		name              string
		items             []response.CartItem
		expectedItemCount int32
		expectedSubtotal  decimal.Decimal
		expectedTax       decimal.Decimal
		expectedTotal     decimal.Decimal
	}{
		{
			name:              "given no items should return zero totals",
			items:             []response.CartItem{},
			expectedItemCount: 0,
			expectedSubtotal:  decimal.Zero,
			expectedTax:       decimal.Zero,
			expectedTotal:     decimal.Zero,
		},
		{
			name: "given single item should apply five percent tax",
			items: []response.CartItem{
				{
					ProductID: uuid.New(),
					Name:      "Gold Ring",
					Price:     decimal.NewFromInt(1000),
					Quantity:  1,
				},
			},
			expectedItemCount: 1,
			expectedSubtotal:  decimal.NewFromInt(1000),
			expectedTax:       decimal.NewFromInt(50),
			expectedTotal:     decimal.NewFromInt(1050),
		},
		{
			name: "given multiple quantities should multiply price by quantity",
			items: []response.CartItem{
				{
					ProductID: uuid.New(),
					Name:      "Silver Necklace",
					Price:     decimal.NewFromInt(200),
					Quantity:  3,
				},
				{
					ProductID: uuid.New(),
					Name:      "Pearl Earrings",
					Price:     decimal.NewFromInt(150),
					Quantity:  2,
				},
			},
			expectedItemCount: 5,
			expectedSubtotal:  decimal.NewFromInt(900),
			expectedTax:       decimal.NewFromInt(45),
			expectedTotal:     decimal.NewFromInt(945),
		},
		{
			name: "given fractional price should round tax to cents",
			items: []response.CartItem{
				{
					ProductID: uuid.New(),
					Name:      "Charm Bracelet",
					Price:     decimal.RequireFromString("19.99"),
					Quantity:  2,
				},
			},
			expectedItemCount: 2,
			expectedSubtotal:  decimal.RequireFromString("39.98"),
			expectedTax:       decimal.RequireFromString("2.00"),
			expectedTotal:     decimal.RequireFromString("41.98"),
		},
		{
			name: "given tax rounding down should keep subtotal plus tax equal total",
			items: []response.CartItem{
				{
					ProductID: uuid.New(),
					Name:      "Opal Pendant",
					Price:     decimal.RequireFromString("24.89"),
					Quantity:  1,
				},
			},
			expectedItemCount: 1,
			expectedSubtotal:  decimal.RequireFromString("24.89"),
			expectedTax:       decimal.RequireFromString("1.24"),
			expectedTotal:     decimal.RequireFromString("26.13"),
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			totalItems, subtotal, tax, total := RecomputeTotals(test.items)

			assert.Equal(t, test.expectedItemCount, totalItems)
			assert.True(
				t,
				test.expectedSubtotal.Equal(subtotal),
				"expected subtotal=%s got=%s",
				test.expectedSubtotal,
				subtotal,
			)
			assert.True(
				t,
				test.expectedTax.Equal(tax),
				"expected tax=%s got=%s",
				test.expectedTax,
				tax,
			)
			assert.True(
				t,
				test.expectedTotal.Equal(total),
				"expected total=%s got=%s",
				test.expectedTotal,
				total,
			)
		})
	}
}

func TestRecomputeTotalsIsConsistent(t *testing.T) {
	items := []response.CartItem{
		{ProductID: uuid.New(), Price: decimal.NewFromInt(500), Quantity: 2},
		{ProductID: uuid.New(), Price: decimal.NewFromInt(75), Quantity: 4},
	}

	_, subtotal, tax, total := RecomputeTotals(items)

	assert.True(t, subtotal.Mul(TaxRate).Round(2).Equal(tax))
	assert.True(t, subtotal.Add(tax).Equal(total))
}
