package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return CartRepository{pool: pool}
}

func (r CartRepository) FindByUser(
	c context.Context,
	userID uuid.UUID,
) (response.Cart, error) {
	cart := response.Cart{CartItems: []response.CartItem{}}

	row := r.pool.QueryRow(
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
			return response.Cart{}, fmt.Errorf(
				"userId=%s with error=%w",
				userID.String(),
				inErrors.ErrCartNotFound,
			)
		}
		return response.Cart{}, fmt.Errorf("failed finding cart with error=%w", err)
	}

	rows, err := r.pool.Query(
		c,
		`SELECT product_id, name, price, image, quantity, created_at
		 FROM cart_items ci
		 JOIN carts ct ON ct.id = ci.cart_id
		 WHERE ct.user_id = $1
		 ORDER BY ci.created_at`,
		userID,
	)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed finding cart items with error=%w", err)
	}
	defer rows.Close()
	for rows.Next() {
		item := response.CartItem{}
		err = rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.Price,
			&item.Image,
			&item.Quantity,
			&item.AddedAt,
		)
		if err != nil {
			return response.Cart{}, fmt.Errorf("failed scanning cart item with error=%w", err)
		}
		cart.CartItems = append(cart.CartItems, item)
	}
	if err = rows.Err(); err != nil {
		return response.Cart{}, fmt.Errorf("failed reading cart items with error=%w", err)
	}

	return cart, nil
}

// Save replaces the stored aggregate with cart inside one transaction. The
// cart row is locked for the duration so item reconciliation and totals land
// together; a reader never sees totals from one write and items from another.
// Snapshot columns of surviving lines are left untouched.
func (r CartRepository) Save(c context.Context, cart response.Cart) (response.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartRepository Save").
		Str(log.KeyUserID, cart.UserID.String()).
		Logger()

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msgf("failed rolling back transaction with error=%s", err.Error())
		}
	}()

	var cartID uuid.UUID
	err = tx.QueryRow(
		c,
		`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
		cart.UserID,
	).Scan(&cartID)
	if errors.Is(err, pgx.ErrNoRows) {
		cartID = uuid.New()
		_, err = tx.Exec(
			c,
			`INSERT INTO carts (id, user_id) VALUES ($1, $2)
			 ON CONFLICT (user_id) DO NOTHING`,
			cartID,
			cart.UserID,
		)
		if err == nil {
			// A concurrent first add may have won the insert; lock whichever row
			// exists now.
			err = tx.QueryRow(
				c,
				`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
				cart.UserID,
			).Scan(&cartID)
		}
	}
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed locking cart row with error=%w", err)
	}

	_, err = tx.Exec(
		c,
		`UPDATE carts
		 SET total_items = $2, subtotal = $3, tax = $4, total = $5, updated_at = NOW()
		 WHERE id = $1`,
		cartID,
		cart.TotalItems,
		cart.Subtotal,
		cart.Tax,
		cart.Total,
	)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed updating cart totals with error=%w", err)
	}

	keep := make([]uuid.UUID, 0, len(cart.CartItems))
	for _, item := range cart.CartItems {
		keep = append(keep, item.ProductID)
	}
	_, err = tx.Exec(
		c,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id != ALL($2)`,
		cartID,
		keep,
	)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed deleting removed cart items with error=%w", err)
	}

	for _, item := range cart.CartItems {
		_, err = tx.Exec(
			c,
			`INSERT INTO cart_items (id, cart_id, product_id, name, price, image, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (cart_id, product_id)
			 DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
			uuid.New(),
			cartID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Image,
			item.Quantity,
		)
		if err != nil {
			return response.Cart{}, fmt.Errorf("failed upserting cart item with error=%w", err)
		}
	}

	err = tx.Commit(c)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}

	return r.FindByUser(c, cart.UserID)
}
