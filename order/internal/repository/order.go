package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	cartRes "github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
	"github.com/ornamently/jewelify/order/pkg/response"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return OrderRepository{pool: pool}
}

// CreateOrderFromCart writes the order and its items and clears the source
// cart in one transaction, so a checkout can never commit an order while
// leaving the cart behind. The cart's snapshots and totals are carried over
// as-is.
func (r OrderRepository) CreateOrderFromCart(
	c context.Context,
	cart cartRes.Cart,
) (response.Order, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderRepository CreateOrderFromCart").
		Str(log.KeyUserID, cart.UserID.String()).
		Logger()

	tx, err := r.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return response.Order{}, fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logger.Error().Err(err).Msgf("failed rolling back transaction with error=%s", err.Error())
		}
	}()

	orderId := uuid.New()
	_, err = tx.Exec(
		c,
		`INSERT INTO orders (id, user_id, status, total_items, subtotal, tax, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		orderId,
		cart.UserID,
		response.StatusPlaced,
		cart.TotalItems,
		cart.Subtotal,
		cart.Tax,
		cart.Total,
	)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}

	for _, item := range cart.CartItems {
		_, err = tx.Exec(
			c,
			`INSERT INTO order_items (id, order_id, product_id, name, price, image, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(),
			orderId,
			item.ProductID,
			item.Name,
			item.Price,
			item.Image,
			item.Quantity,
		)
		if err != nil {
			return response.Order{}, fmt.Errorf("failed inserting order item with error=%w", err)
		}
	}

	var cartID uuid.UUID
	err = tx.QueryRow(
		c,
		`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`,
		cart.UserID,
	).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Order{}, fmt.Errorf(
				"userId=%s with error=%w",
				cart.UserID.String(),
				inErrors.ErrCartNotFound,
			)
		}
		return response.Order{}, fmt.Errorf("failed locking cart row with error=%w", err)
	}
	_, err = tx.Exec(c, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed clearing cart items with error=%w", err)
	}
	_, err = tx.Exec(
		c,
		`UPDATE carts
		 SET total_items = 0, subtotal = 0, tax = 0, total = 0, updated_at = NOW()
		 WHERE id = $1`,
		cartID,
	)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed resetting cart totals with error=%w", err)
	}

	if err = tx.Commit(c); err != nil {
		return response.Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}

	return r.FindOrderById(c, cart.UserID, orderId)
}

func (r OrderRepository) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (response.Order, error) {
	order := response.Order{OrderItems: []response.OrderItem{}}

	row := r.pool.QueryRow(
		c,
		`SELECT id, user_id, status, total_items, subtotal, tax, total, created_at, updated_at
		 FROM orders
		 WHERE id = $1 AND user_id = $2`,
		orderID,
		userID,
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalItems,
		&order.Subtotal,
		&order.Tax,
		&order.Total,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return response.Order{}, fmt.Errorf(
				"orderId=%s with error=%w",
				orderID.String(),
				inErrors.ErrOrderNotFound,
			)
		}
		return response.Order{}, fmt.Errorf("failed finding order with error=%w", err)
	}

	items, err := r.findOrderItems(c, orderID)
	if err != nil {
		return response.Order{}, err
	}
	order.OrderItems = items
	return order, nil
}

func (r OrderRepository) FindOrdersByUser(
	c context.Context,
	userID uuid.UUID,
) ([]response.Order, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT id, user_id, status, total_items, subtotal, tax, total, created_at, updated_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding orders with error=%w", err)
	}
	defer rows.Close()

	orders := []response.Order{}
	for rows.Next() {
		order := response.Order{OrderItems: []response.OrderItem{}}
		err = rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalItems,
			&order.Subtotal,
			&order.Tax,
			&order.Total,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order with error=%w", err)
		}
		orders = append(orders, order)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading orders with error=%w", err)
	}

	for i := range orders {
		items, err := r.findOrderItems(c, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].OrderItems = items
	}
	return orders, nil
}

func (r OrderRepository) findOrderItems(
	c context.Context,
	orderID uuid.UUID,
) ([]response.OrderItem, error) {
	rows, err := r.pool.Query(
		c,
		`SELECT product_id, name, price, image, quantity
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY created_at`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding order items with error=%w", err)
	}
	defer rows.Close()

	items := []response.OrderItem{}
	for rows.Next() {
		item := response.OrderItem{}
		err = rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.Image, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed scanning order item with error=%w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading order items with error=%w", err)
	}
	return items, nil
}
