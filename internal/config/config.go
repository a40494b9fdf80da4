package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"taskboard/internal/logger"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	AppPort     string
	AppEnv      string
	AppVersion  string
	StoreDriver string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration

	CORSOrigin   string
	QueryTimeout time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits: requests per window. 0 disables the limiter.
	APIRateLimit    int
	APIRateWindow   time.Duration
	WriteRateLimit  int
	WriteRateWindow time.Duration

	LogLevel string
	LogJSON  bool
	LogFile  string
}

// Load reads .env (if present) and the environment. Missing required
// values are fatal.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := parse(os.Getenv)
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func parse(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:       withDefault(getenv("APP_PORT"), "3000"),
		AppEnv:        withDefault(getenv("APP_ENV"), "development"),
		AppVersion:    withDefault(getenv("APP_VERSION"), "dev"),
		StoreDriver:   strings.ToLower(withDefault(getenv("STORE_DRIVER"), StoreDriverPostgres)),
		DatabaseURL:   getenv("DATABASE_URL"),
		JWTSecret:     getenv("JWT_SECRET"),
		JWTIssuer:     withDefault(getenv("JWT_ISSUER"), "taskboard"),
		CORSOrigin:    getenv("CORS_ORIGIN"),
		RedisAddr:     getenv("REDIS_ADDR"),
		RedisPassword: getenv("REDIS_PASSWORD"),
		LogLevel:      strings.ToLower(withDefault(getenv("LOG_LEVEL"), "info")),
		LogJSON:       getenv("LOG_JSON") == "true",
		LogFile:       getenv("LOG_FILE"),
	}

	var errs []error
	intVar := func(name string, def int, dst *int) {
		v := getenv(name)
		if v == "" {
			*dst = def
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s must be a non-negative integer, got %q", name, v))
			return
		}
		*dst = n
	}

	var ttlHours, timeoutMS, apiWindow, writeWindow int
	intVar("TOKEN_TTL_HOURS", 24, &ttlHours)
	intVar("DB_QUERY_TIMEOUT_MS", 5000, &timeoutMS)
	intVar("REDIS_DB", 0, &cfg.RedisDB)
	intVar("API_RATE_LIMIT", 100, &cfg.APIRateLimit)
	intVar("API_RATE_WINDOW_SECONDS", 60, &apiWindow)
	intVar("WRITE_RATE_LIMIT", 30, &cfg.WriteRateLimit)
	intVar("WRITE_RATE_WINDOW_SECONDS", 60, &writeWindow)

	cfg.TokenTTL = time.Duration(ttlHours) * time.Hour
	cfg.QueryTimeout = time.Duration(timeoutMS) * time.Millisecond
	cfg.APIRateWindow = time.Duration(apiWindow) * time.Second
	cfg.WriteRateWindow = time.Duration(writeWindow) * time.Second

	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is not set"))
		}
	case StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, cfg.StoreDriver))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if cfg.QueryTimeout <= 0 {
		errs = append(errs, errors.New("DB_QUERY_TIMEOUT_MS must be positive"))
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_HOURS must be positive"))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
