package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ornamently/jewelify/internal/common"
	inErrors "github.com/ornamently/jewelify/internal/errors"
	inHttp "github.com/ornamently/jewelify/internal/http"
	"github.com/ornamently/jewelify/internal/log"
)

func Auth(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware auth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().
					Err(inErrors.ErrEmptyAuth).
					Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"success":    false,
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(strings.TrimPrefix(authorization, "Bearer "), "bearer ")
			jwtToken, err := common.VerifyToken(c, token, secretKey)
			if err != nil {
				logger.Error().
					Err(inErrors.ErrTokenInvalid).
					Msg(inErrors.ErrTokenInvalid.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"success":    false,
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}

			c = common.AttachJwtTokenToContext(c, jwtToken)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
