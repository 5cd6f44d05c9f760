package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "dev",
		"APP_PORT":   "8080",
		"DB_USER":    "cinema",
		"DB_HOST":    "127.0.0.1",
		"DB_NAME":    "cinema",
		"JWT_SECRET": "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.True(t, cfg.Development())
	assert.Equal(t, 15*time.Minute, cfg.SelectionTTL)
	assert.Equal(t, 10*time.Second, cfg.ShowtimeCacheTTL)
	assert.Equal(t, "logs", cfg.BookingLogDir)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Cache.Methods["GET"])
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
}

func TestFromEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SELECTION_TTL", "5m")
	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("AMQP_URL", "amqp://mq:5672/")
	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.Development())
	assert.Equal(t, 5*time.Minute, cfg.SelectionTTL)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "amqp://mq:5672/", cfg.RabbitMQURL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.TTL)
}

func TestFromEnvReportsAllMissing(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	require.ErrorIs(t, err, ErrMissingEnv)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestRateLimitNormalized(t *testing.T) {
	c := RateLimitConfig{}.normalized()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, time.Second, c.RefillInterval)
	assert.Equal(t, 5*time.Second, c.TTL)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), RedisConfig{Addr: mr.Addr()})
	assert.Error(t, err)
}

func TestAuthFromEnvNeedsOnlySecret(t *testing.T) {
	for _, k := range []string{"APP_ENV", "APP_PORT", "DB_USER", "DB_HOST", "DB_NAME"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")

	a, err := AuthFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", a.JWTSecret)
	assert.Equal(t, 5*time.Minute, a.AccessTTL)

	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrMissingEnv, "the server still needs the full set")
}

func TestAuthFromEnvMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := AuthFromEnv()
	assert.ErrorIs(t, err, ErrMissingEnv)
	assert.ErrorContains(t, err, "JWT_SECRET")
}
