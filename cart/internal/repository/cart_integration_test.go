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

	"github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
)

func setupCartRepository(t *testing.T, c context.Context) CartRepository {
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

	return NewCartRepository(pool)
}

func newCart(userId uuid.UUID, items ...response.CartItem) response.Cart {
	cart := response.EmptyCart(userId)
	cart.CartItems = items
	var totalItems int32
	subtotal := decimal.Zero
	for _, item := range items {
		totalItems += item.Quantity
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	cart.TotalItems = totalItems
	cart.Subtotal = subtotal
	cart.Tax = subtotal.Mul(decimal.RequireFromString("0.05")).Round(2)
	cart.Total = cart.Subtotal.Add(cart.Tax)
	return cart
}

func TestCartRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	repo := setupCartRepository(t, c)

	t.Run("FindByUser on unknown user returns ErrCartNotFound", func(t *testing.T) {
		_, err := repo.FindByUser(c, uuid.New())
		assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
	})

	t.Run("Save then FindByUser round trips the aggregate", func(t *testing.T) {
		userId := uuid.New()
		ringId := uuid.New()

		saved, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: ringId,
			Name:      "Gold Ring",
			Price:     decimal.NewFromInt(1000),
			Image:     "ring.jpg",
			Quantity:  2,
		}))
		require.NoError(t, err)
		assert.Equal(t, userId, saved.UserID)

		found, err := repo.FindByUser(c, userId)
		require.NoError(t, err)
		require.Len(t, found.CartItems, 1)
		assert.Equal(t, ringId, found.CartItems[0].ProductID)
		assert.Equal(t, "Gold Ring", found.CartItems[0].Name)
		assert.True(t, decimal.NewFromInt(1000).Equal(found.CartItems[0].Price))
		assert.Equal(t, int32(2), found.CartItems[0].Quantity)
		assert.Equal(t, int32(2), found.TotalItems)
		assert.True(t, decimal.NewFromInt(2000).Equal(found.Subtotal))
		assert.True(t, decimal.NewFromInt(100).Equal(found.Tax))
		assert.True(t, decimal.NewFromInt(2100).Equal(found.Total))
	})

	t.Run("Save keeps fractional totals intact across the round trip", func(t *testing.T) {
		userId := uuid.New()

		saved, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: uuid.New(),
			Name:      "Charm Bracelet",
			Price:     decimal.RequireFromString("19.99"),
			Image:     "bracelet.jpg",
			Quantity:  2,
		}))
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("39.98").Equal(saved.Subtotal))
		assert.True(t, decimal.RequireFromString("2.00").Equal(saved.Tax))
		assert.True(t, decimal.RequireFromString("41.98").Equal(saved.Total))

		found, err := repo.FindByUser(c, userId)
		require.NoError(t, err)
		assert.True(t, saved.Tax.Equal(found.Tax))
		assert.True(t, saved.Total.Equal(found.Total))
	})

	t.Run("Save replaces the whole aggregate", func(t *testing.T) {
		userId := uuid.New()
		ringId := uuid.New()
		necklaceId := uuid.New()

		_, err := repo.Save(c, newCart(userId,
			response.CartItem{
				ProductID: ringId,
				Name:      "Gold Ring",
				Price:     decimal.NewFromInt(1000),
				Quantity:  1,
			},
			response.CartItem{
				ProductID: necklaceId,
				Name:      "Silver Necklace",
				Price:     decimal.NewFromInt(200),
				Quantity:  3,
			},
		))
		require.NoError(t, err)

		found, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: necklaceId,
			Name:      "Silver Necklace",
			Price:     decimal.NewFromInt(200),
			Quantity:  5,
		}))
		require.NoError(t, err)
		require.Len(t, found.CartItems, 1)
		assert.Equal(t, necklaceId, found.CartItems[0].ProductID)
		assert.Equal(t, int32(5), found.CartItems[0].Quantity)
	})

	t.Run("Save keeps the snapshot columns of an existing line", func(t *testing.T) {
		userId := uuid.New()
		ringId := uuid.New()

		_, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: ringId,
			Name:      "Gold Ring",
			Price:     decimal.NewFromInt(1000),
			Quantity:  1,
		}))
		require.NoError(t, err)

		found, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: ringId,
			Name:      "Renamed Ring",
			Price:     decimal.NewFromInt(9999),
			Quantity:  2,
		}))
		require.NoError(t, err)
		require.Len(t, found.CartItems, 1)
		assert.Equal(t, "Gold Ring", found.CartItems[0].Name)
		assert.True(t, decimal.NewFromInt(1000).Equal(found.CartItems[0].Price))
		assert.Equal(t, int32(2), found.CartItems[0].Quantity)
	})

	t.Run("Save with no items empties the cart", func(t *testing.T) {
		userId := uuid.New()

		_, err := repo.Save(c, newCart(userId, response.CartItem{
			ProductID: uuid.New(),
			Name:      "Gold Ring",
			Price:     decimal.NewFromInt(1000),
			Quantity:  1,
		}))
		require.NoError(t, err)

		found, err := repo.Save(c, newCart(userId))
		require.NoError(t, err)
		assert.Empty(t, found.CartItems)
		assert.Equal(t, int32(0), found.TotalItems)
	})
}
