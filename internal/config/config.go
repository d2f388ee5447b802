package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakTokens = []string{
	"change-me", "dev-token-change-me", "secret", "admin", "password", "token",
}

type Config struct {
	Port                  int    `env:"PORT" envDefault:"8080"`
	DatabaseURL           string `env:"DATABASE_URL,required"`
	RedisURL              string `env:"REDIS_URL,required"`
	AdminToken            string `env:"ADMIN_TOKEN,required"`
	VAPIDPublicKey        string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey       string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber       string `env:"VAPID_SUBSCRIBER" envDefault:"admin@resultshub.app"`
	PresenceStaleSeconds  int    `env:"PRESENCE_STALE_SECONDS" envDefault:"120"`
	PresenceSweepSeconds  int    `env:"PRESENCE_SWEEP_SECONDS" envDefault:"60"`
	PushConcurrency       int    `env:"PUSH_CONCURRENCY" envDefault:"8"`
	PushTimeoutSeconds    int    `env:"PUSH_TIMEOUT_SECONDS" envDefault:"10"`
	PublicRateLimitPerMin int    `env:"PUBLIC_RATE_LIMIT_PER_MIN" envDefault:"120"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func (c *Config) PresenceStaleAfter() time.Duration {
	return time.Duration(c.PresenceStaleSeconds) * time.Second
}

func (c *Config) PresenceSweepInterval() time.Duration {
	return time.Duration(c.PresenceSweepSeconds) * time.Second
}

func (c *Config) PushTimeout() time.Duration {
	return time.Duration(c.PushTimeoutSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	if isProduction {
		if err := validateToken("ADMIN_TOKEN", c.AdminToken); err != nil {
			return err
		}
		if c.VAPIDPublicKey == "" || c.VAPIDPrivateKey == "" {
			log.Warn().Msg("VAPID keys are empty in production: push delivery disabled")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
	}

	return nil
}

func validateToken(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -hex 32)", name)
	}
	for _, weak := range knownWeakTokens {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong credential in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
