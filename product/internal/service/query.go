package service

import (
	"github.com/shopspring/decimal"

	"github.com/ornamently/jewelify/product/pkg/request"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// NormalizeListQuery clamps pagination and discards unusable filter values so
// the repository only ever sees a well-formed query.
func NormalizeListQuery(param request.ListProducts) request.ListProducts {
	if param.Limit <= 0 {
		param.Limit = defaultListLimit
	}
	if param.Limit > maxListLimit {
		param.Limit = maxListLimit
	}
	if param.Offset < 0 {
		param.Offset = 0
	}
	if param.MinPrice.IsNegative() {
		param.MinPrice = decimal.Zero
	}
	if param.MaxPrice.IsNegative() {
		param.MaxPrice = decimal.Zero
	}
	if !param.MinPrice.IsZero() && !param.MaxPrice.IsZero() &&
		param.MaxPrice.LessThan(param.MinPrice) {
		param.MinPrice, param.MaxPrice = param.MaxPrice, param.MinPrice
	}
	switch param.SortBy {
	case "price_asc", "price_desc", "newest":
	default:
		param.SortBy = "newest"
	}
	return param
}
