package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ornamently/jewelify/internal/common"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/order/internal/otel"
	"github.com/ornamently/jewelify/order/internal/service"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(router *mux.Router, svc *service.OrderService) {
	controller := OrderController{service: svc}

	r := router.PathPrefix("/orders").Subrouter()
	r.HandleFunc("/checkout", controller.Checkout).Methods(http.MethodPost)
	r.HandleFunc("", controller.FindOrdersByUser).Methods(http.MethodGet)
	r.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
}

func statusCodeFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrOrderNotFound),
		errors.Is(err, inErrors.ErrCartNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrCartEmpty):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (t OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController Checkout").
		Logger()

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "checking out cart").Logger()
	logger.Info().Msg("checking out cart")
	c = logger.WithContext(c)
	order, err := t.service.Checkout(c, userId)
	if err != nil {
		err = fmt.Errorf("failed checking out cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("checked out cart")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusCreated,
		"order":      order,
	})
}

func (t OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrderById").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating orderId").Logger()
	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed validating orderId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Info().Msg("finding order")
	c = logger.WithContext(c)
	order, err := t.service.FindOrderById(c, userId, orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"order":      order,
	})
}

func (t OrderController) FindOrdersByUser(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrdersByUser")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderController FindOrdersByUser").
		Logger()

	userId, ok := t.userId(c, w, span)
	if !ok {
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Info().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := t.service.FindOrdersByUser(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msgf("found %d orders", len(orders))

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"orders":     orders,
	})
}

func (t OrderController) userId(
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
