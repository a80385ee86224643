package request

import "github.com/shopspring/decimal"

type InsertProduct struct {
	Name        string          `json:"name"        validate:"required,min=2"`
	Category    string          `json:"category"    validate:"required,min=2"`
	Description string          `json:"description" validate:"omitempty"`
	Image       string          `json:"image"       validate:"omitempty,url"`
	Price       decimal.Decimal `json:"price"       validate:"required"`
	Quantity    int32           `json:"quantity"    validate:"gte=0"`
}

type UpdateProduct struct {
	Name        string          `json:"name"        validate:"required,min=2"`
	Category    string          `json:"category"    validate:"required,min=2"`
	Description string          `json:"description" validate:"omitempty"`
	Image       string          `json:"image"       validate:"omitempty,url"`
	Price       decimal.Decimal `json:"price"       validate:"required"`
	Quantity    int32           `json:"quantity"    validate:"gte=0"`
}

// ListProducts is decoded from query parameters, not a JSON body.
type ListProducts struct {
	Name     string
	Category string
	MinPrice decimal.Decimal
	MaxPrice decimal.Decimal
	SortBy   string
	Limit    int32
	Offset   int32
}
