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

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	CommerceBaseURL        string
	CommercePublishableKey string
	CommerceAdminToken     string
	AuthBaseURL            string

	UpstreamTimeout     time.Duration
	UpstreamMaxAttempts int
	BreakerMinRequests  int
	BreakerFailureRatio float64
	BreakerOpenFor      time.Duration
	CatalogCacheTTL     time.Duration
	IdempotencyTTL      time.Duration
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration

	JWTSecret         string
	JWTIssuer         string
	JWTAudience       string
	JWTClockSkew      time.Duration
	AccessCookieName  string
	RefreshCookieName string
	CookieDomain      string
	CookieSecure      bool
	CSRFCookieName    string

	SecurityHeaders bool
	EnableHSTS      bool
	BodyLimitBytes  int64

	DomesticCurrency string
	DomesticCountry  string
	CompanyName      string
	CompanyLines     []string
	InvoiceFooter    []string
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
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS"), ","),

		CommerceBaseURL:        strings.TrimRight(strings.TrimSpace(k.String("COMMERCE_BASE_URL")), "/"),
		CommercePublishableKey: strings.TrimSpace(k.String("COMMERCE_PUBLISHABLE_KEY")),
		CommerceAdminToken:     strings.TrimSpace(k.String("COMMERCE_ADMIN_TOKEN")),
		AuthBaseURL:            strings.TrimRight(strings.TrimSpace(k.String("AUTH_BASE_URL")), "/"),

		UpstreamTimeout:     parseDuration(k.String("UPSTREAM_TIMEOUT"), "10s"),
		UpstreamMaxAttempts: parseInt(k.String("UPSTREAM_MAX_ATTEMPTS"), 1),
		BreakerMinRequests:  parseInt(k.String("BREAKER_MIN_REQUESTS"), 10),
		BreakerFailureRatio: parseFloat(k.String("BREAKER_FAILURE_RATIO"), 0.5),
		BreakerOpenFor:      parseDuration(k.String("BREAKER_OPEN_FOR"), "30s"),
		CatalogCacheTTL:     parseDuration(k.String("CATALOG_CACHE_TTL"), "60s"),
		IdempotencyTTL:      parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		AuthRateLimitMax:    parseInt(k.String("AUTH_RATE_LIMIT_MAX"), 10),
		AuthRateLimitWindow: parseDuration(k.String("AUTH_RATE_LIMIT_WINDOW"), "1m"),

		JWTSecret:         k.String("JWT_SECRET"),
		JWTIssuer:         strings.TrimSpace(k.String("JWT_ISSUER")),
		JWTAudience:       strings.TrimSpace(k.String("JWT_AUDIENCE")),
		JWTClockSkew:      parseDuration(k.String("JWT_CLOCK_SKEW"), "30s"),
		AccessCookieName:  valueOrDefault(k.String("ACCESS_COOKIE_NAME"), "access_token"),
		RefreshCookieName: valueOrDefault(k.String("REFRESH_COOKIE_NAME"), "refresh_token"),
		CookieDomain:      strings.TrimSpace(k.String("COOKIE_DOMAIN")),
		CSRFCookieName:    valueOrDefault(k.String("CSRF_COOKIE_NAME"), "csrf_token"),

		SecurityHeaders: parseBool(k.String("SECURITY_HEADERS"), true),
		EnableHSTS:      parseBool(k.String("SECURITY_HSTS"), false),
		BodyLimitBytes:  int64(parseInt(k.String("BODY_LIMIT_BYTES"), 1<<20)),

		DomesticCurrency: strings.ToUpper(valueOrDefault(k.String("DOMESTIC_CURRENCY"), "INR")),
		DomesticCountry:  strings.ToLower(valueOrDefault(k.String("DOMESTIC_COUNTRY"), "in")),
		CompanyName:      valueOrDefault(k.String("COMPANY_NAME"), "Toko Storefront"),
		CompanyLines:     splitAndTrim(k.String("COMPANY_LINES"), "|"),
		InvoiceFooter:    splitAndTrim(k.String("INVOICE_FOOTER"), "|"),
	}

	if cfg.CommerceBaseURL == "" {
		return nil, errors.New("COMMERCE_BASE_URL is required")
	}
	if cfg.AuthBaseURL == "" {
		return nil, errors.New("AUTH_BASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	cfg.CookieSecure = parseBool(k.String("COOKIE_SECURE"), cfg.AppEnv == "production")
	if cfg.UpstreamMaxAttempts < 1 {
		cfg.UpstreamMaxAttempts = 1
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

func splitAndTrim(value, sep string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, sep)
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
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseBool(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
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
