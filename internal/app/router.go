package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/noah-isme/toko-storefront/internal/authgw"
	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/invoice"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/order"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/security"
)

// RouterOptions toggles the observability surface.
type RouterOptions struct {
	Metrics        *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool
	Pprof          http.Handler
}

// NewRouter mounts every route on a chi router.
func NewRouter(d *Dependencies, opts RouterOptions) (http.Handler, error) {
	cfg := d.Config
	logger := d.Logger

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Source: d.Commerce,
		Cache:  catalog.NewCache(d.Redis, cfg.CatalogCacheTTL),
		Logger: obs.Component(logger, "catalog"),
	})
	if err != nil {
		return nil, err
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{Service: catalogService})
	cartHandler := &cart.Handler{Carts: d.Commerce, Logger: obs.Component(logger, "cart")}
	orderHandler := &order.Handler{Orders: d.Commerce, Logger: obs.Component(logger, "order")}
	orderAdmin := &order.AdminHandler{Orders: d.Commerce, Logger: obs.Component(logger, "order")}
	invoiceHandler := &invoice.Handler{
		Orders:    d.Commerce,
		Generator: d.Generator,
		Options:   d.InvoiceOptions(),
		Logger:    obs.Component(logger, "invoice"),
	}
	authHandler := &authgw.Handler{
		Gateway:           d.Auth,
		AccessCookieName:  cfg.AccessCookieName,
		RefreshCookieName: cfg.RefreshCookieName,
		CookieDomain:      cfg.CookieDomain,
		CookieSecure:      cfg.CookieSecure,
		CookieSameSite:    http.SameSiteLaxMode,
		Logger:            obs.Component(logger, "auth"),
	}
	authMiddleware := authgw.Middleware{Verifier: d.Verifier, AccessCookie: cfg.AccessCookieName}
	idem := common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL}
	authLimit := ratelimit.Handler{
		Limiter: d.AuthLimiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.AuthRateLimitWindow, Max: cfg.AuthRateLimitMax},
		OnError: func(err error) { logger.Error().Err(err).Msg("rate limiter unavailable") },
	}
	csrf := security.CSRF{
		Cookie:         cfg.CSRFCookieName,
		SessionCookies: []string{cfg.AccessCookieName, cfg.RefreshCookieName},
		Domain:         cfg.CookieDomain,
		Secure:         cfg.CookieSecure,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if opts.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: opts.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.Headers{Enable: cfg.SecurityHeaders, EnableHSTS: cfg.EnableHSTS}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Total-Count", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}
	if opts.Pprof != nil {
		r.Mount("/debug/pprof", opts.Pprof)
	}

	healthHandler := health.Handler{Probes: []health.Probe{
		{Name: "redis", Timeout: 300 * time.Millisecond, Check: func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }},
		{Name: "commerce", Timeout: time.Second, Check: d.Commerce.Ping},
		{Name: "auth", Timeout: time.Second, Check: d.Auth.Ping},
	}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		v.Use(csrf.Middleware)

		v.Get("/products", catalogHandler.Products)
		v.Get("/products/{handle}", catalogHandler.ProductDetail)
		v.Get("/search", catalogHandler.Search)

		v.Route("/auth", func(a chi.Router) {
			a.With(authLimit.Middleware).Post("/register", authHandler.Register)
			a.With(authLimit.Middleware, csrf.Issue).Post("/login", authHandler.Login)
			a.With(csrf.Issue).Post("/refresh", authHandler.Refresh)
			a.Post("/logout", authHandler.Logout)
			a.Post("/password/forgot", authHandler.ForgotPassword)
			a.Post("/password/reset", authHandler.ResetPassword)
			a.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		v.Route("/carts", func(c chi.Router) {
			c.Use(authMiddleware.Authenticate)
			c.Get("/{cartId}", cartHandler.Get)
			c.Group(func(g chi.Router) {
				g.Use(idem.Middleware)
				g.Post("/", cartHandler.Create)
				g.Post("/{cartId}/line-items", cartHandler.AddLine)
				g.Post("/{cartId}/line-items/{lineId}", cartHandler.UpdateLine)
				g.Delete("/{cartId}/line-items/{lineId}", cartHandler.DeleteLine)
			})
		})

		v.Group(func(authR chi.Router) {
			authR.Use(authMiddleware.RequireAuth)
			authR.Get("/orders", orderHandler.List)
			authR.Get("/orders/{orderId}", orderHandler.Get)
			authR.Get("/orders/{orderId}/invoice", invoiceHandler.Customer)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth)
			admin.Use(authgw.RequireRole("admin"))
			admin.Get("/orders", orderAdmin.List)
			admin.Get("/orders/{orderId}", orderAdmin.Get)
			admin.Get("/orders/{orderId}/invoice", invoiceHandler.Admin)
		})
	})

	return r, nil
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
