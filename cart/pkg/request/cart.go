package request

import (
	"github.com/google/uuid"
)

type AddItem struct {
	ProductId uuid.UUID `validate:"required"         json:"product_id"`
	Quantity  int32     `validate:"omitempty,gte=1"  json:"quantity"`
}

type RemoveItem struct {
	ProductId uuid.UUID `validate:"required" json:"product_id"`
}

type SetItemQuantity struct {
	Quantity int32 `json:"quantity"`
}
