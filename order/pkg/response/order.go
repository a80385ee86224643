package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const StatusPlaced = "placed"

// Order carries the totals exactly as the cart computed them at checkout;
// they are copied, never recomputed here.
type Order struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"user_id"`
	Status     string          `json:"status"`
	OrderItems []OrderItem     `json:"order_items"`
	TotalItems int32           `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int32           `json:"quantity"`
}
