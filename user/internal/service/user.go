package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ornamently/jewelify/internal/common"
	"github.com/ornamently/jewelify/internal/config"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
	inOtel "github.com/ornamently/jewelify/internal/otel"
	"github.com/ornamently/jewelify/user/internal/otel"
	"github.com/ornamently/jewelify/user/internal/repository"
	"github.com/ornamently/jewelify/user/pkg/request"
	"github.com/ornamently/jewelify/user/pkg/response"
)

type UserService struct {
	repo   repository.UserRepository
	otps   OtpStore
	config config.Application
}

func NewUserService(
	repo repository.UserRepository,
	otps OtpStore,
	config config.Application,
) UserService {
	return UserService{repo: repo, otps: otps, config: config}
}

func (s UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Info().Msg("inserting user")
	user, err := s.repo.InsertUser(c, param.Name, param.Email, string(hashed))
	if err != nil {
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("inserted user")

	return user.Response(), nil
}

func (s UserService) Login(c context.Context, param request.Login) (string, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by email")
	user, err := s.repo.FindByEmail(c, param.Email)
	if err != nil {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	logger.Info().Msg("verifying password")
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		err = fmt.Errorf("password mismatch with error=%w", inErrors.ErrInvalidCredentials)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "issuing token").Logger()
	logger.Info().Msg("issuing token")
	token, err := common.IssueToken(user.ID, user.Email, s.config.SecretKey)
	if err != nil {
		err = fmt.Errorf("failed issuing token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	logger.Info().Msg("issued token")

	return token, nil
}

func (s UserService) FindUserById(c context.Context, id uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService FindUserById").
		Str(log.KeyUserID, id.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by id")
	user, err := s.repo.FindById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding user by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("found user by id")

	return user.Response(), nil
}

// RequestOtp generates and stores a code for the email. Delivery is logged;
// there is no mail transport here.
func (s UserService) RequestOtp(c context.Context, param request.RequestOtp) error {
	c, span := otel.Tracer.Start(c, "UserService RequestOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService RequestOtp").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user").Logger()
	logger.Info().Msg("finding user by email")
	if _, err := s.repo.FindByEmail(c, param.Email); err != nil {
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "generating otp").Logger()
	logger.Info().Msg("generating otp")
	otp, err := s.otps.Generate(c, param.Email)
	if err != nil {
		err = fmt.Errorf("failed generating otp with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msgf("sent otp=%s to email=%s", otp, param.Email)

	return nil
}

func (s UserService) VerifyOtp(
	c context.Context,
	param request.VerifyOtp,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService VerifyOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService VerifyOtp").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying otp").Logger()
	logger.Info().Msg("verifying otp")
	if err := s.otps.Verify(c, param.Email, param.Otp); err != nil {
		err = fmt.Errorf("failed verifying otp with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("verified otp")

	logger = logger.With().Str(log.KeyProcess, "marking user verified").Logger()
	logger.Info().Msg("marking user verified")
	user, err := s.repo.MarkVerified(c, param.Email)
	if err != nil {
		err = fmt.Errorf("failed marking user verified with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("marked user verified")

	return user.Response(), nil
}
