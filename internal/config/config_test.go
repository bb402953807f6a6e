package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shuffleraid/raid-api/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.False(t, cfg.RedisTLS)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Zero(t, cfg.RandomSeed)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("SESSION_TTL", "1h30m")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RANDOM_SEED", "12345")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, int64(12345), cfg.RandomSeed)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")

	_, err := config.Load()
	require.Error(t, err)
}
