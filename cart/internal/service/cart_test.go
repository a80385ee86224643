package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ornamently/jewelify/cart/pkg/request"
	"github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	productRes "github.com/ornamently/jewelify/product/pkg/response"
)

type memoryCartRepository struct {
	mu    sync.Mutex
	carts map[uuid.UUID]response.Cart
}

func newMemoryCartRepository() *memoryCartRepository {
	return &memoryCartRepository{carts: map[uuid.UUID]response.Cart{}}
}

func (r *memoryCartRepository) FindByUser(
	_ context.Context,
	userID uuid.UUID,
) (response.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return response.Cart{}, inErrors.ErrCartNotFound
	}
	return cart, nil
}

func (r *memoryCartRepository) Save(
	_ context.Context,
	cart response.Cart,
) (response.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[cart.UserID] = cart
	return cart, nil
}

type stubProductFinder struct {
	products map[uuid.UUID]productRes.Product
}

func (f stubProductFinder) FindProductById(
	_ context.Context,
	id uuid.UUID,
) (productRes.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return productRes.Product{}, inErrors.ErrProductNotFound
	}
	return product, nil
}

func newTestProduct(name string, price int64) productRes.Product {
	return productRes.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.NewFromInt(price),
		Image:    "https://cdn.jewelify.test/" + name + ".jpg",
		Quantity: 100,
	}
}

func newTestCartService(products ...productRes.Product) (CartService, *memoryCartRepository) {
	repo := newMemoryCartRepository()
	finder := stubProductFinder{products: map[uuid.UUID]productRes.Product{}}
	for _, product := range products {
		finder.products[product.ID] = product
	}
	return NewCartService(repo, finder, nil), repo
}

func TestAddItem(t *testing.T) {
	ring := newTestProduct("gold-ring", 1000)

	t.Run("given no existing cart should create cart with snapshot line", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		cart, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)

		require.NoError(t, err)
		assert.Equal(t, userId, cart.UserID)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, ring.ID, cart.CartItems[0].ProductID)
		assert.Equal(t, ring.Name, cart.CartItems[0].Name)
		assert.True(t, ring.Price.Equal(cart.CartItems[0].Price))
		assert.Equal(t, int32(1), cart.CartItems[0].Quantity)
		assert.True(t, decimal.NewFromInt(1000).Equal(cart.Subtotal))
		assert.True(t, decimal.NewFromInt(50).Equal(cart.Tax))
		assert.True(t, decimal.NewFromInt(1050).Equal(cart.Total))
	})

	t.Run("given existing line should merge quantities", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 2},
		)
		require.NoError(t, err)
		cart, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 3},
		)

		require.NoError(t, err)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, int32(5), cart.CartItems[0].Quantity)
		assert.Equal(t, int32(5), cart.TotalItems)
	})

	t.Run("given omitted quantity should default to one", func(t *testing.T) {
		svc, _ := newTestCartService(ring)

		cart, err := svc.AddItem(
			context.Background(),
			uuid.New(),
			request.AddItem{ProductId: ring.ID},
		)

		require.NoError(t, err)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, int32(1), cart.CartItems[0].Quantity)
	})

	t.Run("given negative quantity should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)

		_, err := svc.AddItem(
			context.Background(),
			uuid.New(),
			request.AddItem{ProductId: ring.ID, Quantity: -1},
		)

		assert.ErrorIs(t, err, inErrors.ErrInvalidQuantity)
	})

	t.Run("given unknown product should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)

		_, err := svc.AddItem(
			context.Background(),
			uuid.New(),
			request.AddItem{ProductId: uuid.New(), Quantity: 1},
		)

		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})

	t.Run("given price change after add should keep snapshot price", func(t *testing.T) {
		svc, repo := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		stored, err := repo.FindByUser(context.Background(), userId)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(1000).Equal(stored.CartItems[0].Price))
	})
}

func TestGetCart(t *testing.T) {
	ring := newTestProduct("gold-ring", 1000)

	t.Run("given no cart should return empty aggregate", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		cart, err := svc.GetCart(context.Background(), userId)

		require.NoError(t, err)
		assert.Equal(t, userId, cart.UserID)
		assert.Empty(t, cart.CartItems)
		assert.NotNil(t, cart.CartItems)
		assert.Equal(t, int32(0), cart.TotalItems)
		assert.True(t, decimal.Zero.Equal(cart.Subtotal))
		assert.True(t, decimal.Zero.Equal(cart.Tax))
		assert.True(t, decimal.Zero.Equal(cart.Total))
	})

	t.Run("given existing cart should return stored aggregate", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 2},
		)
		require.NoError(t, err)

		cart, err := svc.GetCart(context.Background(), userId)

		require.NoError(t, err)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, int32(2), cart.TotalItems)
		assert.True(t, decimal.NewFromInt(2100).Equal(cart.Total))
	})
}

func TestRemoveItem(t *testing.T) {
	ring := newTestProduct("gold-ring", 1000)
	necklace := newTestProduct("silver-necklace", 200)

	t.Run("given existing line should remove it and recompute totals", func(t *testing.T) {
		svc, _ := newTestCartService(ring, necklace)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)
		_, err = svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: necklace.ID, Quantity: 2},
		)
		require.NoError(t, err)

		cart, err := svc.RemoveItem(context.Background(), userId, ring.ID)

		require.NoError(t, err)
		require.Len(t, cart.CartItems, 1)
		assert.Equal(t, necklace.ID, cart.CartItems[0].ProductID)
		assert.True(t, decimal.NewFromInt(400).Equal(cart.Subtotal))
		assert.True(t, decimal.NewFromInt(420).Equal(cart.Total))
	})

	t.Run("given missing line should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		_, err = svc.RemoveItem(context.Background(), userId, uuid.New())

		assert.ErrorIs(t, err, inErrors.ErrCartItemNotFound)
	})

	t.Run("given no cart should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)

		_, err := svc.RemoveItem(context.Background(), uuid.New(), ring.ID)

		assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
	})
}

func TestClearCart(t *testing.T) {
	ring := newTestProduct("gold-ring", 1000)

	t.Run("given populated cart should empty it and zero totals", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 3},
		)
		require.NoError(t, err)

		cart, err := svc.ClearCart(context.Background(), userId)

		require.NoError(t, err)
		assert.Empty(t, cart.CartItems)
		assert.Equal(t, int32(0), cart.TotalItems)
		assert.True(t, decimal.Zero.Equal(cart.Subtotal))
		assert.True(t, decimal.Zero.Equal(cart.Tax))
		assert.True(t, decimal.Zero.Equal(cart.Total))
	})

	t.Run("given no cart should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)

		_, err := svc.ClearCart(context.Background(), uuid.New())

		assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
	})
}

func TestAdjustItemQuantity(t *testing.T) {
	ring := newTestProduct("gold-ring", 1000)

	t.Run("increment should add one", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		cart, err := svc.IncrementItem(context.Background(), userId, ring.ID)

		require.NoError(t, err)
		assert.Equal(t, int32(2), cart.CartItems[0].Quantity)
		assert.True(t, decimal.NewFromInt(2100).Equal(cart.Total))
	})

	t.Run("decrement should subtract one", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 2},
		)
		require.NoError(t, err)

		cart, err := svc.DecrementItem(context.Background(), userId, ring.ID)

		require.NoError(t, err)
		assert.Equal(t, int32(1), cart.CartItems[0].Quantity)
	})

	t.Run("decrement at quantity one should remove the line", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		cart, err := svc.DecrementItem(context.Background(), userId, ring.ID)

		require.NoError(t, err)
		assert.Empty(t, cart.CartItems)
		assert.Equal(t, int32(0), cart.TotalItems)
	})

	t.Run("set quantity should replace quantity", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		cart, err := svc.SetItemQuantity(context.Background(), userId, ring.ID, 7)

		require.NoError(t, err)
		assert.Equal(t, int32(7), cart.CartItems[0].Quantity)
		assert.Equal(t, int32(7), cart.TotalItems)
	})

	t.Run("set quantity to zero should remove the line", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 3},
		)
		require.NoError(t, err)

		cart, err := svc.SetItemQuantity(context.Background(), userId, ring.ID, 0)

		require.NoError(t, err)
		assert.Empty(t, cart.CartItems)
	})

	t.Run("adjusting missing line should return error", func(t *testing.T) {
		svc, _ := newTestCartService(ring)
		userId := uuid.New()

		_, err := svc.AddItem(
			context.Background(),
			userId,
			request.AddItem{ProductId: ring.ID, Quantity: 1},
		)
		require.NoError(t, err)

		_, err = svc.IncrementItem(context.Background(), userId, uuid.New())

		assert.ErrorIs(t, err, inErrors.ErrCartItemNotFound)
	})
}
