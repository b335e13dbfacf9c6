// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Session store and rate limit counters (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Password hashing work factor (Argon2id). Raising these makes brute
	// force more expensive at the cost of login latency.
	HashTime     uint32 `env:"HASH_TIME" envDefault:"3"`
	HashMemoryKB uint32 `env:"HASH_MEMORY_KB" envDefault:"65536"`
	HashThreads  uint8  `env:"HASH_THREADS" envDefault:"4"`

	// Session lifetime
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Secure session cookies require HTTPS; off by default for local development.
	SessionCookieSecure bool `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// Rate limiting for sensitive operations, counted per client IP.
	RateLimitEnabled      bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimitMax     int           `env:"LOGIN_RATE_LIMIT_MAX" envDefault:"5"`
	LoginRateLimitWindow  time.Duration `env:"LOGIN_RATE_LIMIT_WINDOW" envDefault:"60s"`
	SignupRateLimitMax    int           `env:"SIGNUP_RATE_LIMIT_MAX" envDefault:"3"`
	SignupRateLimitWindow time.Duration `env:"SIGNUP_RATE_LIMIT_WINDOW" envDefault:"15m"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB; auth payloads are tiny)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
