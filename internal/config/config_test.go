package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("PORT", "")
	t.Setenv("CLIENT_URL", "")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("PW_RESET_EXP_MS", "")
	t.Setenv("MONGO_TRANSACTIONS", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5001", cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.ClientURL)
	assert.Equal(t, 7*24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, time.Hour, cfg.ResetTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.False(t, cfg.MongoTransactions)
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigLegacyNames(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_SECRET", "legacy")
	t.Setenv("RESET_TOKEN_TTL", "")
	t.Setenv("PW_RESET_EXP_MS", "900000")
	t.Setenv("APP_ENV", "")
	t.Setenv("NODE_ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "legacy", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.ResetTokenTTL)
	assert.True(t, cfg.IsProduction())
}

func TestRateLimitConfigClamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "10s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	rl := loadRateLimitConfig()
	assert.Equal(t, 1, rl.Capacity)
	assert.Equal(t, 50*time.Second, rl.TTL)
}

func TestNewRedisClientWithoutAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), RedisConfig{}))
}
