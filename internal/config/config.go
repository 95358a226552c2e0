// Package config loads flashdeck configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// MinSessionSecretLength is enforced outside development.
const MinSessionSecretLength = 32

// Config holds all application configuration.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   int    `env:"PORT" envDefault:"8080"`

	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	RedisURL         string `env:"REDIS_URL,required"`

	// Session tokens are signed by the identity provider with this secret.
	SessionSecret     string `env:"SESSION_SECRET,required"`
	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"flashdeck.session-token"`
	SessionIssuer     string `env:"SESSION_ISSUER" envDefault:"flashdeck"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	MigrateOnStart      bool `env:"MIGRATE_ON_START" envDefault:"true"`
	ReviewWorkerEnabled bool `env:"REVIEW_WORKER_ENABLED" envDefault:"true"`
	MetricsEnabled      bool `env:"METRICS_ENABLED" envDefault:"true"`

	RateLimitPerMinute   int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	RateLimitBurst       int `env:"RATE_LIMIT_BURST" envDefault:"30"`
	RateLimitIPPerSecond int `env:"RATE_LIMIT_IP_PER_SECOND" envDefault:"20"`
	RateLimitIPBurst     int `env:"RATE_LIMIT_IP_BURST" envDefault:"40"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	MaxBodyBytes       int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Peers allowed to set X-Forwarded-For / X-Real-IP. Empty trusts nobody.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	IdentityCacheTTL time.Duration `env:"IDENTITY_CACHE_TTL" envDefault:"5m"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigins returns the CORS origins with blanks removed.
func (c *Config) AllowedOrigins() []string {
	result := make([]string, 0, len(c.CORSAllowedOrigins))
	for _, origin := range c.CORSAllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// SlogLevel maps LOG_LEVEL onto slog levels. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks ranges and production constraints.
func (c *Config) Validate() error {
	var errs []error

	switch c.AppEnv {
	case "development", "staging", "production", "test":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, staging, production, test; got %q", c.AppEnv))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535; got %d", c.Port))
	}
	if !c.IsDevelopment() && len(c.SessionSecret) < MinSessionSecretLength {
		errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d bytes outside development", MinSessionSecretLength))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text; got %q", c.LogFormat))
	}
	if c.RateLimitPerMinute < 0 || c.RateLimitBurst < 0 || c.RateLimitIPPerSecond < 0 || c.RateLimitIPBurst < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.DatabaseMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive; got %d", c.DatabaseMaxConns))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive; got %d", c.MaxBodyBytes))
	}
	if c.IdentityCacheTTL <= 0 {
		errs = append(errs, errors.New("IDENTITY_CACHE_TTL must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.IsProduction() {
		for _, origin := range c.AllowedOrigins() {
			if origin == "*" {
				errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must not contain * in production"))
			}
		}
	}

	return errors.Join(errs...)
}

// RedactURL hides the password of a connection URL for logging.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable>"
	}
	return u.Redacted()
}

// Load reads optional .env files, parses the environment and validates it.
// Values already present in the environment win over .env files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Missing files are fine; real deployments use the environment.
		_ = godotenv.Load(f)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
