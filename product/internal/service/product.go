package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/product/internal/otel"
	"github.com/ornamently/jewelify/product/internal/repository"
	"github.com/ornamently/jewelify/product/pkg/request"
	"github.com/ornamently/jewelify/product/pkg/response"
)

const cacheKeyProductById = "products:%s"

type ProductService struct {
	repo  repository.ProductRepository
	cache *redis.Client
}

func NewProductService(repo repository.ProductRepository, cache *redis.Client) ProductService {
	return ProductService{repo: repo, cache: cache}
}

func (s ProductService) InsertProduct(
	c context.Context,
	param request.InsertProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	product, err := s.repo.InsertProduct(c, param)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger = logger.With().Str(log.KeyProductID, product.ID.String()).Logger()
	logger.Info().Msg("inserted product")

	c = logger.WithContext(c)
	s.refreshCache(c, product)
	return product, nil
}

func (s ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(cacheKeyProductById, id.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	if s.cache != nil {
		logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
		logger.Info().Msg("finding product in cache")
		jsonCache, err := s.cache.JSONGet(c, cacheKey).Result()
		if err == nil && jsonCache != "" {
			product := response.Product{}
			if err = json.Unmarshal([]byte(jsonCache), &product); err == nil {
				logger.Info().Msg("found product in cache")
				return product, nil
			}
			err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in db").Logger()
	logger.Info().Msg("finding product in db")
	product, err := s.repo.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product in db")

	c = logger.WithContext(c)
	s.refreshCache(c, product)
	return product, nil
}

func (s ProductService) FindProducts(
	c context.Context,
	param request.ListProducts,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	products, err := s.repo.FindProducts(c, NormalizeListQuery(param))
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found %d products", len(products))

	return products, nil
}

func (s ProductService) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Info().Msg("updating product")
	product, err := s.repo.UpdateProduct(c, id, param)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("updated product")

	c = logger.WithContext(c)
	s.invalidateCache(c, id)
	s.refreshCache(c, product)
	return product, nil
}

func (s ProductService) DeleteProduct(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting product").Logger()
	logger.Info().Msg("deleting product")
	err := s.repo.DeleteProduct(c, id)
	if err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("deleted product")

	c = logger.WithContext(c)
	s.invalidateCache(c, id)
	return nil
}

// refreshCache is best effort; a cache failure never fails the operation.
func (s ProductService) refreshCache(c context.Context, product response.Product) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf(cacheKeyProductById, product.ID.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "inserting product to cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger.Info().Msg("inserting product to cache")
	err := s.cache.JSONSet(c, cacheKey, "$", product).Err()
	if err != nil {
		err = fmt.Errorf("failed inserting product to cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("inserted product to cache")
}

func (s ProductService) invalidateCache(c context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	cacheKey := fmt.Sprintf(cacheKeyProductById, id.String())
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "deleting product from cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger.Info().Msg("deleting product from cache")
	if err := s.cache.Del(c, cacheKey).Err(); err != nil {
		err = fmt.Errorf("failed deleting product from cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("deleted product from cache")
}
