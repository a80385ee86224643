package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/order/pkg/response"
)

func setupOrderRepository(t *testing.T, c context.Context) (*pgxpool.Pool, OrderRepository, CartStore) {
	t.Helper()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_PORT":     "5432",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "..", "migrations", "20250812101000_create_table_carts.up.sql"),
			filepath.Join("..", "..", "..", "migrations", "20250812101500_create_table_orders.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pool, err := pgxpool.New(c, pgConnStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	return pool, NewOrderRepository(pool), NewCartStore(pool)
}

func seedCart(t *testing.T, c context.Context, pool *pgxpool.Pool, userId uuid.UUID) {
	t.Helper()

	cartId := uuid.New()
	_, err := pool.Exec(
		c,
		`INSERT INTO carts (id, user_id, total_items, subtotal, tax, total)
		 VALUES ($1, $2, 2, 2000, 100, 2100)`,
		cartId,
		userId,
	)
	require.NoError(t, err)
	_, err = pool.Exec(
		c,
		`INSERT INTO cart_items (id, cart_id, product_id, name, price, image, quantity)
		 VALUES ($1, $2, $3, 'Gold Ring', 1000, 'ring.jpg', 2)`,
		uuid.New(),
		cartId,
		uuid.New(),
	)
	require.NoError(t, err)
}

func TestOrderRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	pool, repo, carts := setupOrderRepository(t, c)

	t.Run("CartStore reads the stored aggregate", func(t *testing.T) {
		userId := uuid.New()
		seedCart(t, c, pool, userId)

		cart, err := carts.FindByUser(c, userId)
		require.NoError(t, err)
		assert.Equal(t, userId, cart.UserID)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, "Gold Ring", cart.CartItems[0].Name)
		assert.True(t, decimal.NewFromInt(2100).Equal(cart.Total))
	})

	t.Run("CartStore on unknown user returns ErrCartNotFound", func(t *testing.T) {
		_, err := carts.FindByUser(c, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
	})

	t.Run("CreateOrderFromCart writes the order and empties the cart together", func(t *testing.T) {
		userId := uuid.New()
		seedCart(t, c, pool, userId)

		cart, err := carts.FindByUser(c, userId)
		require.NoError(t, err)

		order, err := repo.CreateOrderFromCart(c, cart)
		require.NoError(t, err)
		assert.Equal(t, userId, order.UserID)
		assert.Equal(t, response.StatusPlaced, order.Status)
		require.Len(t, order.OrderItems, 1)
		assert.True(t, decimal.NewFromInt(2100).Equal(order.Total))

		// No separate clearing call: the order transaction already did it.
		cleared, err := carts.FindByUser(c, userId)
		require.NoError(t, err)
		assert.Empty(t, cleared.CartItems)
		assert.Equal(t, int32(0), cleared.TotalItems)
		assert.True(t, decimal.Zero.Equal(cleared.Total))
	})

	t.Run("FindOrderById is scoped to the user", func(t *testing.T) {
		userId := uuid.New()
		seedCart(t, c, pool, userId)

		cart, err := carts.FindByUser(c, userId)
		require.NoError(t, err)
		order, err := repo.CreateOrderFromCart(c, cart)
		require.NoError(t, err)

		_, err = repo.FindOrderById(c, uuid.New(), order.ID)
		assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
	})
}
