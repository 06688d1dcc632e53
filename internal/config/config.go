package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Postgres  PostgresConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Events    EventsConfig
	Reaper    ReaperConfig
}

type AppConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development" validate:"oneof=development production test"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type PostgresConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`
	Host        string `env:"PGHOST" envDefault:"localhost"`
	Port        string `env:"PGPORT" envDefault:"5432"`
	User        string `env:"PGUSER"`
	Password    string `env:"PGPASSWORD"`
	Database    string `env:"PGDATABASE"`
	SSLMode     string `env:"PGSSLMODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

type AuthConfig struct {
	JWTSecret        string `env:"JWT_SECRET" validate:"required,min=16"`
	JWTRefreshSecret string `env:"JWT_REFRESH_SECRET"`
	JWTIssuer        string `env:"JWT_ISSUER" envDefault:"userauth"`
	AccessExpiresIn  string `env:"JWT_ACCESS_TOKEN_EXPIRES_IN" envDefault:"15m"`
	RefreshExpiresIn string `env:"JWT_REFRESH_TOKEN_EXPIRES_IN" envDefault:"7d"`
	BcryptCost       int    `env:"BCRYPT_COST" envDefault:"12" validate:"min=4,max=31"`
	AdminEmail       string `env:"ADMIN_EMAIL"`
	AdminUsername    string `env:"ADMIN_USERNAME"`
	AdminPassword    string `env:"ADMIN_PASSWORD"`
}

// AccessTTL returns the parsed access token lifetime.
func (c AuthConfig) AccessTTL() time.Duration {
	return ParseTTL(c.AccessExpiresIn)
}

// RefreshTTL returns the parsed refresh token lifetime. The same value is
// used for the signed token and for the stored row.
func (c AuthConfig) RefreshTTL() time.Duration {
	return ParseTTL(c.RefreshExpiresIn)
}

// RefreshSecret falls back to the access secret when no dedicated refresh
// secret is configured.
func (c AuthConfig) RefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
}

type RateLimitConfig struct {
	Enabled        bool          `env:"ENABLED" envDefault:"true"`
	Prefix         string        `env:"PREFIX" envDefault:"rl:auth"`
	Capacity       int           `env:"CAPACITY" envDefault:"20" validate:"gt=0"`
	RefillTokens   int           `env:"REFILL_TOKENS" envDefault:"5" validate:"gt=0"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1m"`
	TTL            time.Duration `env:"TTL" envDefault:"10m"`
}

type EventsConfig struct {
	AMQPURL string `env:"AMQP_URL"`
	Queue   string `env:"AMQP_QUEUE" envDefault:"auth.events"`
}

type ReaperConfig struct {
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"1h"`
}

// IsDevelopment reports whether internal error details may be exposed.
func (c Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// Load reads an optional .env file, then environment variables, then
// validates the result.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
