// Package config loads server settings from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/shuffleraid/raid-api/internal/errors"
)

// Config holds every setting the server reads from the environment
type Config struct {
	RedisAddr    string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisTLS     bool          `env:"REDIS_TLS" envDefault:"false"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	OpenAIModel  string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	// RandomSeed pins the dice roller for reproducible runs; zero
	// means seed from the clock
	RandomSeed int64 `env:"RANDOM_SEED" envDefault:"0"`
}

// Load parses the environment into a Config
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	return &cfg, nil
}
