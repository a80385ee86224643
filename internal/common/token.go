package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ornamently/jewelify/internal/constants"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	"github.com/ornamently/jewelify/internal/log"
)

type jwtToken struct{}

func JwtTokenFromContext(c context.Context) *jwt.Token {
	token, ok := c.Value(jwtToken{}).(*jwt.Token)
	if !ok {
		return nil
	}
	return token
}

func AttachJwtTokenToContext(c context.Context, token *jwt.Token) context.Context {
	return context.WithValue(c, jwtToken{}, token)
}

func IssueToken(userID uuid.UUID, email string, secretKey string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    constants.AppUserService,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{constants.AudienceUser},
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token for email=%s with error=%w", email, err)
	}
	return signed, nil
}

func VerifyToken(c context.Context, token string, secretKey string) (*jwt.Token, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	jwtToken, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.AppUserService),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing with claims with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating token").Logger()
	if !jwtToken.Valid {
		logger.Error().Err(inErrors.ErrTokenInvalid).Msg(inErrors.ErrTokenInvalid.Error())
		return nil, inErrors.ErrTokenInvalid
	}

	return jwtToken, nil
}

func UserIdFromJwtToken(c context.Context) (uuid.UUID, error) {
	token := JwtTokenFromContext(c)
	if token == nil {
		return uuid.Nil, inErrors.ErrTokenInvalid
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed getting subject from token with error=%w", err)
	}
	if strings.TrimSpace(subject) == "" {
		return uuid.Nil, inErrors.ErrEmptySubject
	}
	userId, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
	}
	return userId, nil
}
