package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	inErrors "github.com/ornamently/jewelify/internal/errors"
)

const (
	otpKeyByEmail = "otps:email:%s"
	otpTTL        = 5 * time.Minute
	otpDigits     = 6
)

// OtpStore keeps one code per email with a TTL. Verify is single use; the key
// is deleted on success so a code can never be replayed.
type OtpStore struct {
	cache *redis.Client
}

func NewOtpStore(cache *redis.Client) OtpStore {
	return OtpStore{cache: cache}
}

func (s OtpStore) Generate(c context.Context, email string) (string, error) {
	otp := ""
	for range otpDigits {
		digit, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed generating otp with error=%w", err)
		}
		otp += digit.String()
	}

	key := fmt.Sprintf(otpKeyByEmail, email)
	if err := s.cache.SetEx(c, key, otp, otpTTL).Err(); err != nil {
		return "", fmt.Errorf("failed storing otp with error=%w", err)
	}
	return otp, nil
}

func (s OtpStore) Verify(c context.Context, email string, otp string) error {
	key := fmt.Sprintf(otpKeyByEmail, email)
	stored, err := s.cache.Get(c, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("email=%s with error=%w", email, inErrors.ErrOtpInvalid)
		}
		return fmt.Errorf("failed finding otp with error=%w", err)
	}
	if stored != otp {
		return fmt.Errorf("email=%s with error=%w", email, inErrors.ErrOtpInvalid)
	}
	if err := s.cache.Del(c, key).Err(); err != nil {
		return fmt.Errorf("failed deleting otp with error=%w", err)
	}
	return nil
}
