package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the per-user aggregate. TotalItems, Subtotal, Tax and Total are
// derived from CartItems and recomputed on every mutation; they are never
// set directly.
type Cart struct {
	UserID     uuid.UUID       `json:"user_id"`
	CartItems  []CartItem      `json:"cart_items"`
	TotalItems int32           `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartItem carries a point-in-time snapshot of the product taken when the
// item was added. Name, Price and Image are frozen at insertion even if the
// product changes later.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int32           `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// EmptyCart is the well-formed zero aggregate returned when a user has no
// cart yet; "no cart" is not an error on reads.
func EmptyCart(userID uuid.UUID) Cart {
	return Cart{
		UserID:     userID,
		CartItems:  []CartItem{},
		TotalItems: 0,
		Subtotal:   decimal.Zero,
		Tax:        decimal.Zero,
		Total:      decimal.Zero,
	}
}
