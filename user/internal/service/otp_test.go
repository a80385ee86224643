package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	inErrors "github.com/ornamently/jewelify/internal/errors"
)

func setupOtpStore(t *testing.T, c context.Context) (OtpStore, *redis.Client) {
	t.Helper()

	redisContainer, err := testRedis.Run(
		c,
		"redis:7.4.2-alpine3.21",
		testRedis.WithLogLevel(testRedis.LogLevelVerbose),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	return NewOtpStore(redisClient), redisClient
}

func TestOtpStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c := context.Background()
	store, redisClient := setupOtpStore(t, c)

	t.Run("generate returns six digits and stores with ttl", func(t *testing.T) {
		otp, err := store.Generate(c, "jane@jewelify.test")

		require.NoError(t, err)
		assert.Len(t, otp, 6)
		for _, r := range otp {
			assert.True(t, r >= '0' && r <= '9')
		}

		ttl, err := redisClient.TTL(c, "otps:email:jane@jewelify.test").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 4*time.Minute)
		assert.LessOrEqual(t, ttl, 5*time.Minute)
	})

	t.Run("verify accepts the stored code once", func(t *testing.T) {
		otp, err := store.Generate(c, "john@jewelify.test")
		require.NoError(t, err)

		err = store.Verify(c, "john@jewelify.test", otp)
		assert.NoError(t, err)

		err = store.Verify(c, "john@jewelify.test", otp)
		assert.ErrorIs(t, err, inErrors.ErrOtpInvalid)
	})

	t.Run("verify rejects a wrong code", func(t *testing.T) {
		otp, err := store.Generate(c, "mary@jewelify.test")
		require.NoError(t, err)

		wrong := "000000"
		if wrong == otp {
			wrong = "111111"
		}
		err = store.Verify(c, "mary@jewelify.test", wrong)
		assert.ErrorIs(t, err, inErrors.ErrOtpInvalid)

		err = store.Verify(c, "mary@jewelify.test", otp)
		assert.NoError(t, err)
	})

	t.Run("verify without a stored code fails", func(t *testing.T) {
		err := store.Verify(c, "nobody@jewelify.test", "123456")
		assert.ErrorIs(t, err, inErrors.ErrOtpInvalid)
	})
}
