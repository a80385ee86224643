package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartRes "github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
)

// CartStore is the order service's read-only view of carts. Checkout only
// needs the aggregate to copy it into an order; clearing happens inside the
// order transaction.
type CartStore struct {
	pool *pgxpool.Pool
}

func NewCartStore(pool *pgxpool.Pool) CartStore {
	return CartStore{pool: pool}
}

func (s CartStore) FindByUser(
	c context.Context,
	userID uuid.UUID,
) (cartRes.Cart, error) {
	cart := cartRes.Cart{CartItems: []cartRes.CartItem{}}

	row := s.pool.QueryRow(
		c,
		`SELECT user_id, total_items, subtotal, tax, total, created_at, updated_at
		 FROM carts
		 WHERE user_id = $1`,
		userID,
	)
	err := row.Scan(
		&cart.UserID,
		&cart.TotalItems,
		&cart.Subtotal,
		&cart.Tax,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cartRes.Cart{}, fmt.Errorf(
				"userId=%s with error=%w",
				userID.String(),
				inErrors.ErrCartNotFound,
			)
		}
		return cartRes.Cart{}, fmt.Errorf("failed finding cart with error=%w", err)
	}

	rows, err := s.pool.Query(
		c,
		`SELECT product_id, name, price, image, quantity, created_at
		 FROM cart_items ci
		 JOIN carts ct ON ct.id = ci.cart_id
		 WHERE ct.user_id = $1
		 ORDER BY ci.created_at`,
		userID,
	)
	if err != nil {
		return cartRes.Cart{}, fmt.Errorf("failed finding cart items with error=%w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item := cartRes.CartItem{}
		err = rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Quantity,
			&item.AddedAt,
		)
		if err != nil {
			return cartRes.Cart{}, fmt.Errorf("failed scanning cart item with error=%w", err)
		}
		cart.CartItems = append(cart.CartItems, item)
	}
	if err = rows.Err(); err != nil {
		return cartRes.Cart{}, fmt.Errorf("failed reading cart items with error=%w", err)
	}

	return cart, nil
}
