package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/product/internal/otel"
	"github.com/ornamently/jewelify/product/internal/service"
	"github.com/ornamently/jewelify/product/pkg/request"
)

type ProductController struct {
	service *service.ProductService
}

// AttachProductController registers the read routes. They stay open so other
// services can resolve products without a user token.
func AttachProductController(router *mux.Router, svc *service.ProductService) {
	controller := ProductController{service: svc}

	r := router.PathPrefix("/products").Subrouter()
	r.HandleFunc("", controller.FindProducts).Methods(http.MethodGet)
	r.HandleFunc("/{productId}", controller.FindProductById).Methods(http.MethodGet)
}

// AttachProductAdminController registers the mutating routes; the caller
// mounts them behind the auth middleware.
func AttachProductAdminController(router *mux.Router, svc *service.ProductService) {
	controller := ProductController{service: svc}

	r := router.PathPrefix("/products").Subrouter()
	r.HandleFunc("", controller.InsertProduct).Methods(http.MethodPost)
	r.HandleFunc("/{productId}", controller.UpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/{productId}", controller.DeleteProduct).Methods(http.MethodDelete)
}

func statusCodeFromError(err error) int {
	if errors.Is(err, inErrors.ErrProductNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (t ProductController) InsertProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.InsertProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "inserting product").Logger()
	logger.Info().Msg("inserting product")
	c = logger.WithContext(c)
	product, err := t.service.InsertProduct(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed inserting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("inserted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusCreated,
		"product":    product,
	})
}

func (t ProductController) FindProducts(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProducts").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing query params").Logger()
	logger.Info().Msg("parsing query params")
	query := r.URL.Query()
	param := request.ListProducts{
		Name:     query.Get("name"),
		Category: query.Get("category"),
		SortBy:   query.Get("sortBy"),
	}
	if raw := query.Get("minPrice"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			param.MinPrice = price
		}
	}
	if raw := query.Get("maxPrice"); raw != "" {
		if price, err := decimal.NewFromString(raw); err == nil {
			param.MaxPrice = price
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if limit, err := strconv.ParseInt(raw, 10, 32); err == nil {
			param.Limit = int32(limit)
		}
	}
	if raw := query.Get("offset"); raw != "" {
		if offset, err := strconv.ParseInt(raw, 10, 32); err == nil {
			param.Offset = int32(offset)
		}
	}
	logger.Info().Msg("parsed query params")

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Info().Msg("finding products")
	c = logger.WithContext(c)
	products, err := t.service.FindProducts(c, param)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d products", len(products))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"products":   products,
	})
}

func (t ProductController) FindProductById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController FindProductById").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating productId").Logger()
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	c = logger.WithContext(c)
	product, err := t.service.FindProductById(c, productId)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"product":    product,
	})
}

func (t ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController UpdateProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating productId").Logger()
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.UpdateProduct{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating product").Logger()
	logger.Info().Msg("updating product")
	c = logger.WithContext(c)
	product, err := t.service.UpdateProduct(c, productId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("updated product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"product":    product,
	})
}

func (t ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "ProductController DeleteProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductController DeleteProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating productId").Logger()
	productId, err := uuid.Parse(mux.Vars(r)["productId"])
	if err != nil {
		err = fmt.Errorf("failed validating productId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting product").Logger()
	logger.Info().Msg("deleting product")
	c = logger.WithContext(c)
	if err := t.service.DeleteProduct(c, productId); err != nil {
		err = fmt.Errorf("failed deleting product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("deleted product")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    "deleted product",
	})
}
