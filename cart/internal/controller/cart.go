package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ornamently/jewelify/cart/internal/otel"
	"github.com/ornamently/jewelify/cart/internal/service"
	"github.com/ornamently/jewelify/cart/pkg/request"
	"github.com/ornamently/jewelify/cart/pkg/response"
	"github.com/ornamently/jewelify/internal/common"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(router *mux.Router, svc *service.CartService) {
	controller := CartController{service: svc}

	r := router.PathPrefix("/cart").Subrouter()
	r.HandleFunc("/add", controller.AddItem).Methods(http.MethodPost)
	r.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	r.HandleFunc("/remove", controller.RemoveItem).Methods(http.MethodDelete)
	r.HandleFunc("/clear", controller.ClearCart).Methods(http.MethodDelete)
	r.HandleFunc("/items/{productId}", controller.SetItemQuantity).Methods(http.MethodPut)
	r.HandleFunc("/items/{productId}/increment", controller.IncrementItem).
		Methods(http.MethodPatch)
	r.HandleFunc("/items/{productId}/decrement", controller.DecrementItem).
		Methods(http.MethodPatch)
}

func statusCodeFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrCartNotFound),
		errors.Is(err, inErrors.ErrCartItemNotFound),
		errors.Is(err, inErrors.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (t CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.AddItem{}
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

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Info().Msg("adding cart item")
	c = logger.WithContext(c)
	cart, err := t.service.AddItem(c, userId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed adding cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("added cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController GetCart").
		Logger()

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	c = logger.WithContext(c)
	cart, err := t.service.GetCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.RemoveItem{}
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

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	cart, err := t.service.RemoveItem(c, userId, reqBody.ProductId)
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("removed cart item")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController ClearCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController ClearCart").
		Logger()

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	c = logger.WithContext(c)
	cart, err := t.service.ClearCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("cleared cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController SetItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController SetItemQuantity").
		Logger()

	productId, ok := t.productId(c, w, r, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyProductID, productId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.SetItemQuantity{}
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

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "setting item quantity").Logger()
	logger.Info().Msg("setting item quantity")
	c = logger.WithContext(c)
	cart, err := t.service.SetItemQuantity(c, userId, productId, reqBody.Quantity)
	if err != nil {
		err = fmt.Errorf("failed setting item quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("set item quantity")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) IncrementItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController IncrementItem")
	defer span.End()
	t.adjust(c, w, r, span, t.service.IncrementItem, "incrementing cart item")
}

func (t CartController) DecrementItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController DecrementItem")
	defer span.End()
	t.adjust(c, w, r, span, t.service.DecrementItem, "decrementing cart item")
}

func (t CartController) adjust(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	span trace.Span,
	op func(context.Context, uuid.UUID, uuid.UUID) (response.Cart, error),
	process string,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartController adjust").
		Str(log.KeyProcess, process).
		Logger()

	productId, ok := t.productId(c, w, r, span)
	if !ok {
		return
	}
	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().
		Str(log.KeyProductID, productId.String()).
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger.Info().Msg(process)
	c = logger.WithContext(c)
	cart, err := op(c, userId, productId)
	if err != nil {
		err = fmt.Errorf("failed %s with error=%w", process, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("finished %s", process)

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"cart":       cart,
	})
}

func (t CartController) userId(
	c context.Context,
	w http.ResponseWriter,
	span trace.Span,
) (uuid.UUID, bool) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "getting userId from jwtToken").
		Logger()

	userId, err := common.UserIdFromJwtToken(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId from jwtToken with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusUnauthorized,
			"message":    err.Error(),
		})
		return uuid.Nil, false
	}
	return userId, true
}

func (t CartController) productId(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	span trace.Span,
) (uuid.UUID, bool) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "validating productId").
		Logger()

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
		return uuid.Nil, false
	}
	return productId, true
}
