package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ornamently/jewelify/cart/internal/otel"
	"github.com/ornamently/jewelify/cart/pkg/request"
	"github.com/ornamently/jewelify/cart/pkg/response"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	productRes "github.com/ornamently/jewelify/product/pkg/response"
)

const cacheKeyCartByUser = "carts:user:%s"

// CartRepository is the persistence collaborator. FindByUser returns
// inErrors.ErrCartNotFound when the user has no cart; Save replaces the whole
// aggregate atomically and returns the persisted state.
type CartRepository interface {
	FindByUser(c context.Context, userID uuid.UUID) (response.Cart, error)
	Save(c context.Context, cart response.Cart) (response.Cart, error)
}

// ProductFinder resolves a product for a point-in-time snapshot. It returns
// inErrors.ErrProductNotFound when the id references nothing.
type ProductFinder interface {
	FindProductById(c context.Context, id uuid.UUID) (productRes.Product, error)
}

type CartService struct {
	repo     CartRepository
	products ProductFinder
	cache    *redis.Client
}

func NewCartService(
	repo CartRepository,
	products ProductFinder,
	cache *redis.Client,
) CartService {
	return CartService{repo: repo, products: products, cache: cache}
}

func (s CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	param request.AddItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	if param.Quantity == 0 {
		param.Quantity = 1
	}
	if param.Quantity < 0 {
		err := fmt.Errorf("quantity=%d with error=%w", param.Quantity, inErrors.ErrInvalidQuantity)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msgf("finding productId=%s", param.ProductId.String())
	c = logger.WithContext(c)
	product, err := s.products.FindProductById(c, param.ProductId)
	if err != nil {
		err = fmt.Errorf(
			"failed finding productId=%s with error=%w",
			param.ProductId.String(),
			err,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msgf("found productId=%s", param.ProductId.String())

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := s.repo.FindByUser(c, userID)
	if err != nil {
		if !errors.Is(err, inErrors.ErrCartNotFound) {
			err = fmt.Errorf("failed finding cart with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("cart not found, creating new cart")
		cart = response.EmptyCart(userID)
	}

	logger = logger.With().Str(log.KeyProcess, "merging cart item").Logger()
	span.AddEvent("merging cart item")
	merged := false
	for i, item := range cart.CartItems {
		if item.ProductID == param.ProductId {
			cart.CartItems[i].Quantity += param.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.CartItems = append(cart.CartItems, response.CartItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  param.Quantity,
			AddedAt:   time.Now(),
		})
	}
	applyTotals(&cart)
	span.AddEvent("merged cart item")
	logger.Info().Msg("merged cart item")

	c = logger.WithContext(c)
	return s.persist(c, span, cart)
}

func (s CartService) GetCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	cacheKey := fmt.Sprintf(cacheKeyCartByUser, userID.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if s.cache != nil {
		logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
		logger.Info().Msg("finding cart in cache")
		jsonCache, err := s.cache.JSONGet(c, cacheKey).Result()
		if err == nil && jsonCache != "" {
			cart := response.Cart{}
			if err = json.Unmarshal([]byte(jsonCache), &cart); err == nil {
				logger.Info().Msg("found cart in cache")
				return cart, nil
			}
			err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart in db").Logger()
	logger.Info().Msg("finding cart in db")
	cart, err := s.repo.FindByUser(c, userID)
	if err != nil {
		if errors.Is(err, inErrors.ErrCartNotFound) {
			logger.Info().Msg("cart not found, returning empty cart")
			return response.EmptyCart(userID), nil
		}
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart in db")

	c = logger.WithContext(c)
	s.refreshCache(c, span, cart)
	return cart, nil
}

func (s CartService) RemoveItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := s.repo.FindByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	index := findItem(cart, productID)
	if index < 0 {
		err = fmt.Errorf(
			"productId=%s with error=%w",
			productID.String(),
			inErrors.ErrCartItemNotFound,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	cart.CartItems = append(cart.CartItems[:index], cart.CartItems[index+1:]...)
	applyTotals(&cart)
	logger.Info().Msg("removed cart item")

	c = logger.WithContext(c)
	return s.persist(c, span, cart)
}

func (s CartService) ClearCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService ClearCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := s.repo.FindByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	cart.CartItems = []response.CartItem{}
	applyTotals(&cart)
	logger.Info().Msg("cleared cart")

	c = logger.WithContext(c)
	return s.persist(c, span, cart)
}

func (s CartService) IncrementItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService IncrementItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService IncrementItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()
	c = logger.WithContext(c)

	return s.adjustQuantity(c, span, userID, productID, func(quantity int32) int32 {
		return quantity + 1
	})
}

func (s CartService) DecrementItem(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService DecrementItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService DecrementItem").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Logger()
	c = logger.WithContext(c)

	return s.adjustQuantity(c, span, userID, productID, func(quantity int32) int32 {
		return quantity - 1
	})
}

func (s CartService) SetItemQuantity(
	c context.Context,
	userID uuid.UUID,
	productID uuid.UUID,
	quantity int32,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService SetItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService SetItemQuantity").
		Str(log.KeyUserID, userID.String()).
		Str(log.KeyProductID, productID.String()).
		Int32(log.KeyQuantity, quantity).
		Logger()
	c = logger.WithContext(c)

	return s.adjustQuantity(c, span, userID, productID, func(int32) int32 {
		return quantity
	})
}

// adjustQuantity applies fn to the quantity of an existing line item. A
// resulting quantity of zero or less removes the line: a persisted line with
// quantity 0 must not exist.
func (s CartService) adjustQuantity(
	c context.Context,
	span trace.Span,
	userID uuid.UUID,
	productID uuid.UUID,
	fn func(int32) int32,
) (response.Cart, error) {
	logger := zerolog.Ctx(c).With().Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := s.repo.FindByUser(c, userID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "adjusting quantity").Logger()
	index := findItem(cart, productID)
	if index < 0 {
		err = fmt.Errorf(
			"productId=%s with error=%w",
			productID.String(),
			inErrors.ErrCartItemNotFound,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	next := fn(cart.CartItems[index].Quantity)
	if next <= 0 {
		cart.CartItems = append(cart.CartItems[:index], cart.CartItems[index+1:]...)
	} else {
		cart.CartItems[index].Quantity = next
	}
	applyTotals(&cart)
	logger.Info().Msgf("adjusted quantity to %d", next)

	c = logger.WithContext(c)
	return s.persist(c, span, cart)
}

// persist saves the aggregate and refreshes the cache so no reader observes
// totals that disagree with the stored item list.
func (s CartService) persist(
	c context.Context,
	span trace.Span,
	cart response.Cart,
) (response.Cart, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "saving cart").
		Logger()

	logger.Info().Msg("saving cart")
	saved, err := s.repo.Save(c, cart)
	if err != nil {
		err = fmt.Errorf("failed saving cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("saved cart")

	s.refreshCache(c, span, saved)
	return saved, nil
}

// refreshCache is best effort; a cache failure never fails the mutation.
func (s CartService) refreshCache(c context.Context, span trace.Span, cart response.Cart) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf(cacheKeyCartByUser, cart.UserID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "inserting cart to cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger.Info().Msg("inserting cart to cache")
	err := s.cache.JSONSet(c, cacheKey, "$", cart).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting cart to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("inserted cart to cache")
}

func findItem(cart response.Cart, productID uuid.UUID) int {
	for i, item := range cart.CartItems {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}
