package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ornamently/jewelify/internal/common"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/user/internal/otel"
	"github.com/ornamently/jewelify/user/internal/service"
	"github.com/ornamently/jewelify/user/pkg/request"
)

type UserController struct {
	service *service.UserService
}

func AttachUserController(router *mux.Router, svc *service.UserService) {
	controller := UserController{service: svc}

	r := router.PathPrefix("/users").Subrouter()
	r.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	r.HandleFunc("/otp", controller.RequestOtp).Methods(http.MethodPost)
	r.HandleFunc("/otp/verify", controller.VerifyOtp).Methods(http.MethodPost)
}

// AttachProfileController carries the routes that need a verified token; the
// caller mounts it behind the auth middleware.
func AttachProfileController(router *mux.Router, svc *service.UserService) {
	controller := UserController{service: svc}

	r := router.PathPrefix("/users").Subrouter()
	r.HandleFunc("/me", controller.FindMe).Methods(http.MethodGet)
}

func statusCodeFromError(err error) int {
	switch {
	case errors.Is(err, inErrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, inErrors.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, inErrors.ErrInvalidCredentials), errors.Is(err, inErrors.ErrOtpInvalid):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeAndValidate writes the failure response itself and reports success via
// the bool.
func decodeAndValidate(
	c context.Context,
	w http.ResponseWriter,
	r *http.Request,
	span trace.Span,
	reqBody interface{},
) bool {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyProcess, "decoding request body").
		Logger()

	logger.Info().Msg("decoding request body")
	if err := json.NewDecoder(r.Body).Decode(reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return false
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
		return false
	}
	logger.Info().Msg("validated request body")
	return true
}

func (t UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Register").
		Logger()

	reqBody := request.Register{}
	if !decodeAndValidate(c, w, r, span, &reqBody) {
		return
	}
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	c = logger.WithContext(c)
	user, err := t.service.Register(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("registered user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusCreated,
		"user":       user,
	})
}

func (t UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController Login").
		Logger()

	reqBody := request.Login{}
	if !decodeAndValidate(c, w, r, span, &reqBody) {
		return
	}
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "logging in user").Logger()
	logger.Info().Msg("logging in user")
	c = logger.WithContext(c)
	token, err := t.service.Login(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed logging in user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("logged in user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"token":      token,
	})
}

func (t UserController) RequestOtp(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController RequestOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController RequestOtp").
		Logger()

	reqBody := request.RequestOtp{}
	if !decodeAndValidate(c, w, r, span, &reqBody) {
		return
	}
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "requesting otp").Logger()
	logger.Info().Msg("requesting otp")
	c = logger.WithContext(c)
	if err := t.service.RequestOtp(c, reqBody); err != nil {
		err = fmt.Errorf("failed requesting otp with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("requested otp")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"message":    "otp sent",
	})
}

func (t UserController) FindMe(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController FindMe")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController FindMe").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
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
		return
	}
	logger = logger.With().Str(log.KeyUserID, userId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user")
	c = logger.WithContext(c)
	user, err := t.service.FindUserById(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("found user")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"user":       user,
	})
}

func (t UserController) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "UserController VerifyOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserController VerifyOtp").
		Logger()

	reqBody := request.VerifyOtp{}
	if !decodeAndValidate(c, w, r, span, &reqBody) {
		return
	}
	logger = logger.With().Str(log.KeyEmail, reqBody.Email).Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying otp").Logger()
	logger.Info().Msg("verifying otp")
	c = logger.WithContext(c)
	user, err := t.service.VerifyOtp(c, reqBody)
	if err != nil {
		err = fmt.Errorf("failed verifying otp with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"success":    false,
			"statusCode": statusCodeFromError(err),
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("verified otp")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"success":    true,
		"statusCode": http.StatusOK,
		"user":       user,
	})
}
