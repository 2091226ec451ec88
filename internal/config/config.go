package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Snapshot store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Login rate limit strategies.
const (
	RateFixed   = "fixed"
	RateSliding = "sliding"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	StoreBackend       string
	StoreKeyPrefix     string
	DatabaseURL        string
	RedisURL           string
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	CORSAllowedOrigins []string
	ReportCacheTTL     time.Duration
	LoginRateLimit     int
	LoginRateWindow    time.Duration
	LoginRateStrategy  string
	CartIdleTTL        time.Duration
	DefaultStaffID     string
	WalkInLabel        string
	Location           *time.Location
	Obs                ObsConfig
}

// ObsConfig groups logging, metrics and tracing switches.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	MetricsNamespace string
	MetricsBuckets   string
	EnablePrometheus bool
	EnableTracing    bool
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		StoreBackend:       strings.ToLower(valueOrDefault(k.String("STORE_BACKEND"), BackendMemory)),
		StoreKeyPrefix:     valueOrDefault(k.String("STORE_KEY_PREFIX"), "salon:"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		JWTSecret:          k.String("JWT_SECRET"),
		JWTIssuer:          valueOrDefault(k.String("JWT_ISSUER"), "salon-api"),
		AccessTokenTTL:     parseDuration(k.String("ACCESS_TOKEN_TTL"), "12h"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		ReportCacheTTL:     parseDuration(k.String("REPORT_CACHE_TTL"), "1m"),
		LoginRateLimit:     parseInt(k.String("LOGIN_RATE_LIMIT"), 10),
		LoginRateWindow:    parseDuration(k.String("LOGIN_RATE_WINDOW"), "1m"),
		LoginRateStrategy:  strings.ToLower(valueOrDefault(k.String("LOGIN_RATE_STRATEGY"), RateFixed)),
		CartIdleTTL:        parseDuration(k.String("CART_IDLE_TTL"), "12h"),
		DefaultStaffID:     valueOrDefault(k.String("POS_DEFAULT_STAFF_ID"), "s1"),
		WalkInLabel:        valueOrDefault(k.String("WALK_IN_LABEL"), "散客"),
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "salon"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			EnablePrometheus: parseBool(valueOrDefault(k.String("OBS_ENABLE_PROMETHEUS"), "true")),
			EnableTracing:    parseBool(k.String("OBS_ENABLE_TRACING")),
			OTLPEndpoint:     k.String("OBS_OTLP_ENDPOINT"),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
		},
	}

	loc, err := time.LoadLocation(valueOrDefault(k.String("SALON_TIMEZONE"), "Local"))
	if err != nil {
		return nil, fmt.Errorf("SALON_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	switch cfg.StoreBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required for the redis store backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres store backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.LoginRateLimit <= 0 {
		return nil, errors.New("LOGIN_RATE_LIMIT must be positive")
	}
	if cfg.LoginRateStrategy != RateFixed && cfg.LoginRateStrategy != RateSliding {
		return nil, fmt.Errorf("unknown LOGIN_RATE_STRATEGY %q", cfg.LoginRateStrategy)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
