package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartRes "github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/order/pkg/response"
)

type memoryCartStore struct {
	carts map[uuid.UUID]cartRes.Cart
}

func (s *memoryCartStore) FindByUser(
	_ context.Context,
	userID uuid.UUID,
) (cartRes.Cart, error) {
	cart, ok := s.carts[userID]
	if !ok {
		return cartRes.Cart{}, inErrors.ErrCartNotFound
	}
	return cart, nil
}

// memoryOrderStore mirrors the repository contract: creating an order also
// clears the source cart, as if both happened in one transaction.
type memoryOrderStore struct {
	orders map[uuid.UUID]response.Order
	carts  *memoryCartStore
}

func (s *memoryOrderStore) CreateOrderFromCart(
	_ context.Context,
	cart cartRes.Cart,
) (response.Order, error) {
	items := make([]response.OrderItem, 0, len(cart.CartItems))
	for _, item := range cart.CartItems {
		items = append(items, response.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Quantity:  item.Quantity,
		})
	}
	order := response.Order{
		ID:         uuid.New(),
		UserID:     cart.UserID,
		Status:     response.StatusPlaced,
		OrderItems: items,
		TotalItems: cart.TotalItems,
		Subtotal:   cart.Subtotal,
		Tax:        cart.Tax,
		Total:      cart.Total,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.orders[order.ID] = order
	s.carts.carts[cart.UserID] = cartRes.EmptyCart(cart.UserID)
	return order, nil
}

func (s *memoryOrderStore) FindOrderById(
	_ context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (response.Order, error) {
	order, ok := s.orders[orderID]
	if !ok || order.UserID != userID {
		return response.Order{}, inErrors.ErrOrderNotFound
	}
	return order, nil
}

func (s *memoryOrderStore) FindOrdersByUser(
	_ context.Context,
	userID uuid.UUID,
) ([]response.Order, error) {
	orders := []response.Order{}
	for _, order := range s.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func newTestOrderService() (OrderService, *memoryCartStore, *memoryOrderStore) {
	carts := &memoryCartStore{carts: map[uuid.UUID]cartRes.Cart{}}
	orders := &memoryOrderStore{orders: map[uuid.UUID]response.Order{}, carts: carts}
	return NewOrderService(orders, carts, nil), carts, orders
}

func populatedCart(userId uuid.UUID) cartRes.Cart {
	cart := cartRes.EmptyCart(userId)
	cart.CartItems = []cartRes.CartItem{
		{
			ProductID: uuid.New(),
			Name:      "Gold Ring",
			Price:     decimal.NewFromInt(1000),
			Quantity:  1,
			AddedAt:   time.Now(),
		},
		{
			ProductID: uuid.New(),
			Name:      "Silver Necklace",
			Price:     decimal.NewFromInt(200),
			Quantity:  2,
			AddedAt:   time.Now(),
		},
	}
	cart.TotalItems = 3
	cart.Subtotal = decimal.NewFromInt(1400)
	cart.Tax = decimal.NewFromInt(70)
	cart.Total = decimal.NewFromInt(1470)
	return cart
}

func TestCheckout(t *testing.T) {
	t.Run("given populated cart should place order and clear cart", func(t *testing.T) {
		svc, carts, _ := newTestOrderService()
		userId := uuid.New()
		carts.carts[userId] = populatedCart(userId)

		order, err := svc.Checkout(context.Background(), userId)

		require.NoError(t, err)
		assert.Equal(t, userId, order.UserID)
		assert.Equal(t, response.StatusPlaced, order.Status)
		require.Len(t, order.OrderItems, 2)
		assert.Equal(t, int32(3), order.TotalItems)
		assert.True(t, decimal.NewFromInt(1400).Equal(order.Subtotal))
		assert.True(t, decimal.NewFromInt(70).Equal(order.Tax))
		assert.True(t, decimal.NewFromInt(1470).Equal(order.Total))

		cleared := carts.carts[userId]
		assert.Empty(t, cleared.CartItems)
		assert.Equal(t, int32(0), cleared.TotalItems)
	})

	t.Run("given empty cart should return error", func(t *testing.T) {
		svc, carts, _ := newTestOrderService()
		userId := uuid.New()
		carts.carts[userId] = cartRes.EmptyCart(userId)

		_, err := svc.Checkout(context.Background(), userId)

		assert.ErrorIs(t, err, inErrors.ErrCartEmpty)
	})

	t.Run("given no cart should return error", func(t *testing.T) {
		svc, _, _ := newTestOrderService()

		_, err := svc.Checkout(context.Background(), uuid.New())

		assert.ErrorIs(t, err, inErrors.ErrCartNotFound)
	})

	t.Run("order snapshots survive later cart changes", func(t *testing.T) {
		svc, carts, _ := newTestOrderService()
		userId := uuid.New()
		carts.carts[userId] = populatedCart(userId)

		order, err := svc.Checkout(context.Background(), userId)
		require.NoError(t, err)

		found, err := svc.FindOrderById(context.Background(), userId, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gold Ring", found.OrderItems[0].Name)
		assert.True(t, decimal.NewFromInt(1000).Equal(found.OrderItems[0].Price))
	})
}

func TestFindOrders(t *testing.T) {
	t.Run("find by id is scoped to the user", func(t *testing.T) {
		svc, carts, _ := newTestOrderService()
		userId := uuid.New()
		carts.carts[userId] = populatedCart(userId)

		order, err := svc.Checkout(context.Background(), userId)
		require.NoError(t, err)

		_, err = svc.FindOrderById(context.Background(), uuid.New(), order.ID)
		assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
	})

	t.Run("list returns only the user's orders", func(t *testing.T) {
		svc, carts, _ := newTestOrderService()
		first := uuid.New()
		second := uuid.New()
		carts.carts[first] = populatedCart(first)
		carts.carts[second] = populatedCart(second)

		_, err := svc.Checkout(context.Background(), first)
		require.NoError(t, err)
		_, err = svc.Checkout(context.Background(), second)
		require.NoError(t, err)

		orders, err := svc.FindOrdersByUser(context.Background(), first)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first, orders[0].UserID)
	})
}
