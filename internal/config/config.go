package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment names accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

const (
	minJWTSecretLength = 32
	minBcryptCost      = 10
)

// Config centralises runtime configuration.
type Config struct {
	Env             string
	HTTPPort        string
	DatabaseURL     string
	JWTSecret       string
	JWTIssuer       string
	JWTExpiry       time.Duration
	BcryptCost      int
	AllowedOrigins  []string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
	LogLevel        string
	RedisURL        string
	TrustProxy      bool
	DB              DBConfig
	RateLimit       RateLimitConfig
}

// DBConfig sizes the connection pool.
type DBConfig struct {
	MaxConns         int32
	MinConns         int32
	IdleTimeout      time.Duration
	ConnectTimeout   time.Duration
	StatementTimeout time.Duration
}

// RateLimitConfig holds the per-class request budgets.
type RateLimitConfig struct {
	Enabled bool
	Auth    Window
	API     Window
	Create  Window
	Search  Window
	Content Window
}

// Window is a fixed-window budget: Max requests per Period.
type Window struct {
	Max    int
	Period time.Duration
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// Load reads configuration from the environment, after merging an optional
// .env file, and validates it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))

	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", "3000")
	}

	cfg := Config{
		Env:             env,
		HTTPPort:        httpPort,
		DatabaseURL:     resolveDatabaseURL(),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "revista-api"),
		JWTExpiry:       getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),
		BcryptCost:      getIntEnv("BCRYPT_COST", 12),
		AllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeoutSec:  getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec: getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:  getIntEnv("HTTP_IDLE_TIMEOUT", 60),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RedisURL:        getEnv("REDIS_URL", ""),
		TrustProxy:      getBoolEnv("TRUST_PROXY", false),
		DB: DBConfig{
			MaxConns:         int32(getIntEnv("DB_POOL_MAX", 20)),
			MinConns:         int32(getIntEnv("DB_POOL_MIN", 5)),
			IdleTimeout:      getDurationEnv("DB_IDLE_TIMEOUT", 30*time.Second),
			ConnectTimeout:   getDurationEnv("DB_CONNECT_TIMEOUT", 2*time.Second),
			StatementTimeout: getDurationEnv("DB_STATEMENT_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled: env != EnvTest && getBoolEnv("RATE_LIMIT_ENABLED", true),
			Auth:    Window{Max: getIntEnv("RATE_LIMIT_AUTH_MAX", 5), Period: 15 * time.Minute},
			API:     Window{Max: getIntEnv("RATE_LIMIT_API_MAX", 100), Period: 15 * time.Minute},
			Create:  Window{Max: getIntEnv("RATE_LIMIT_CREATE_MAX", 20), Period: time.Hour},
			Search:  Window{Max: getIntEnv("RATE_LIMIT_SEARCH_MAX", 30), Period: time.Minute},
			Content: Window{Max: getIntEnv("RATE_LIMIT_CONTENT_MAX", 10), Period: 5 * time.Minute},
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the service refuses to start without.
func (c Config) Validate() error {
	var errs []error
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test; got %q", c.Env))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("database configuration missing: provide DATABASE_URL or PG* env vars"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.BcryptCost < minBcryptCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", minBcryptCost))
	}
	if c.DB.MaxConns < 1 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		errs = append(errs, fmt.Errorf("invalid pool sizing: min %d, max %d", c.DB.MinConns, c.DB.MaxConns))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

// getDurationEnv accepts Go durations ("90m") and whole days ("7d").
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	if days, found := strings.CutSuffix(val, "d"); found {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

// resolveDatabaseURL prefers DATABASE_URL and otherwise assembles a URL from
// the libpq PG* variables. Non-postgres URLs are rejected.
func resolveDatabaseURL() string {
	if raw := strings.TrimSpace(os.Getenv("DATABASE_URL")); raw != "" {
		if rest, ok := strings.CutPrefix(raw, "postgresql://"); ok {
			return "postgres://" + rest
		}
		if strings.HasPrefix(raw, "postgres://") {
			return raw
		}
		return ""
	}

	host, user := os.Getenv("PGHOST"), os.Getenv("PGUSER")
	if host == "" || user == "" {
		return ""
	}
	dsn := &neturl.URL{
		Scheme:   "postgres",
		User:     neturl.User(user),
		Host:     net.JoinHostPort(host, getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("PGDATABASE", user),
		RawQuery: neturl.Values{"sslmode": {getEnv("PGSSLMODE", "disable")}}.Encode(),
	}
	if pw := os.Getenv("PGPASSWORD"); pw != "" {
		dsn.User = neturl.UserPassword(user, pw)
	}
	return dsn.String()
}
