package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/toko-storefront/internal/authgw"
	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/invoice"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// Dependencies enumerates the clients shared across route groups.
type Dependencies struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Redis       *redis.Client
	Commerce    *commerce.Client
	Auth        *authgw.Client
	Verifier    *authgw.Verifier
	AuthLimiter *limiter.Limiter
	Generator   *invoice.Generator
}

// NewDependencies wires upstream clients over transport. A nil transport
// falls back to http.DefaultTransport.
func NewDependencies(cfg *config.Config, logger zerolog.Logger, rdb *redis.Client, transport http.RoundTripper) (*Dependencies, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if rdb == nil {
		return nil, errors.New("app: redis client is required")
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	authLimiter, err := ratelimit.NewLimiter(rdb, "ratelimit:auth", ratelimit.Config{
		Window: cfg.AuthRateLimitWindow,
		Max:    cfg.AuthRateLimitMax,
	})
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Config: cfg,
		Logger: logger,
		Redis:  rdb,
		Commerce: &commerce.Client{
			BaseURL:        cfg.CommerceBaseURL,
			PublishableKey: cfg.CommercePublishableKey,
			AdminToken:     cfg.CommerceAdminToken,
			HTTP:           Upstream(cfg, "commerce", transport, logger),
		},
		Auth: &authgw.Client{
			BaseURL: cfg.AuthBaseURL,
			HTTP:    Upstream(cfg, "auth", transport, logger),
		},
		Verifier: &authgw.Verifier{
			Secret: []byte(cfg.JWTSecret),
			Validator: authgw.TokenValidator{
				Issuer:    cfg.JWTIssuer,
				Audience:  cfg.JWTAudience,
				ClockSkew: cfg.JWTClockSkew,
				Algorithm: jwa.HS256,
			},
		},
		AuthLimiter: authLimiter,
		Generator: invoice.NewGenerator(invoice.Company{
			Name:   cfg.CompanyName,
			Lines:  cfg.CompanyLines,
			Footer: cfg.InvoiceFooter,
		}),
	}, nil
}

// Upstream builds a breaker-guarded client for one backend.
func Upstream(cfg *config.Config, target string, transport http.RoundTripper, logger zerolog.Logger) resilience.HTTPClient {
	breaker := resilience.NewBreaker(cfg.BreakerMinRequests, cfg.BreakerFailureRatio, cfg.BreakerOpenFor).
		WithTarget(target).
		WithLogger(logger)
	return resilience.HTTPClient{
		Client:      &http.Client{Transport: transport},
		Breaker:     breaker,
		Target:      target,
		BaseBackoff: 200 * time.Millisecond,
		MaxAttempts: cfg.UpstreamMaxAttempts,
		Jitter:      0.2,
		Timeout:     cfg.UpstreamTimeout,
	}
}

// InvoiceOptions returns the seller's home market for tax placement.
func (d *Dependencies) InvoiceOptions() invoice.Options {
	return invoice.Options{
		DomesticCurrency: d.Config.DomesticCurrency,
		DomesticCountry:  d.Config.DomesticCountry,
	}
}
