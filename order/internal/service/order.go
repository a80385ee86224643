package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	cartRes "github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/order/internal/otel"
	"github.com/ornamently/jewelify/order/pkg/response"
)

const cacheKeyCartByUser = "carts:user:%s"

// CartStore is the slice of the cart persistence the checkout needs: read the
// aggregate so it can be copied into an order.
type CartStore interface {
	FindByUser(c context.Context, userID uuid.UUID) (cartRes.Cart, error)
}

// OrderStore persists orders created from cart aggregates. CreateOrderFromCart
// also clears the source cart in the same transaction.
type OrderStore interface {
	CreateOrderFromCart(c context.Context, cart cartRes.Cart) (response.Order, error)
	FindOrderById(c context.Context, userID, orderID uuid.UUID) (response.Order, error)
	FindOrdersByUser(c context.Context, userID uuid.UUID) ([]response.Order, error)
}

type OrderService struct {
	orders OrderStore
	carts  CartStore
	cache  *redis.Client
}

func NewOrderService(orders OrderStore, carts CartStore, cache *redis.Client) OrderService {
	return OrderService{orders: orders, carts: carts, cache: cache}
}

// Checkout turns the user's cart into an order; the store clears the cart in
// the same transaction that writes the order. The cart's totals are copied to
// the order untouched.
func (s OrderService) Checkout(c context.Context, userID uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := s.carts.FindByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if len(cart.CartItems) == 0 {
		err = fmt.Errorf("userId=%s with error=%w", userID.String(), inErrors.ErrCartEmpty)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	order, err := s.orders.CreateOrderFromCart(c, cart)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	logger.Info().Msg("created order")

	c = logger.WithContext(c)
	s.invalidateCartCache(c, userID)

	return order, nil
}

func (s OrderService) FindOrderById(
	c context.Context,
	userID uuid.UUID,
	orderID uuid.UUID,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Info().Msg("finding order")
	order, err := s.orders.FindOrderById(c, userID, orderID)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order")

	return order, nil
}

func (s OrderService) FindOrdersByUser(
	c context.Context,
	userID uuid.UUID,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrdersByUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService FindOrdersByUser").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	orders, err := s.orders.FindOrdersByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d orders", len(orders))

	return orders, nil
}

// invalidateCartCache is best effort; checkout already succeeded.
func (s OrderService) invalidateCartCache(c context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf(cacheKeyCartByUser, userID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "deleting cart from cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		err = fmt.Errorf("failed deleting cart from cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("deleted cart from cache")
}
