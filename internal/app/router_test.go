package app_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/app"
	"github.com/noah-isme/toko-storefront/internal/config"
)

const secret = "router-test-secret"

const orderJSON = `{"order":{
	"id":"order_01",
	"display_id":1042,
	"status":"completed",
	"payment_status":"captured",
	"created_at":"2024-03-05T14:30:00Z",
	"currency_code":"inr",
	"email":"asha@example.com",
	"subtotal":1000,
	"shipping_total":0,
	"tax_total":180,
	"total":1180,
	"items":[{"id":"item_1","title":"Cotton Kurta","quantity":1,"unit_price":1000,"total":1000}],
	"shipping_address":{"first_name":"Asha","last_name":"Rao","city":"Pune","country_code":"in"},
	"payments":[{"id":"pay_1","provider_id":"pp_razorpay_razorpay","amount":1180}]
}}`

type stack struct {
	router       http.Handler
	productCalls *atomic.Int32
}

func newStack(t *testing.T) stack {
	t.Helper()
	var productCalls atomic.Int32

	commerceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/health":
			_, _ = io.WriteString(w, `{}`)
		case r.URL.Path == "/store/products":
			productCalls.Add(1)
			_, _ = io.WriteString(w, `{"products":[{"id":"prod_1","handle":"kurta"}],"count":1,"offset":0,"limit":20}`)
		case r.URL.Path == "/store/orders/order_01":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, orderJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(commerceSrv.Close)

	authSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = io.WriteString(w, `{}`)
		case "/auth/login":
			_, _ = io.WriteString(w, `{"access_token":"a","refresh_token":"b","expires_in":900}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(authSrv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		CommerceBaseURL:     commerceSrv.URL,
		AuthBaseURL:         authSrv.URL,
		UpstreamTimeout:     time.Second,
		UpstreamMaxAttempts: 1,
		BreakerMinRequests:  100,
		BreakerFailureRatio: 0.9,
		BreakerOpenFor:      time.Second,
		CatalogCacheTTL:     time.Minute,
		IdempotencyTTL:      time.Minute,
		AuthRateLimitMax:    1,
		AuthRateLimitWindow: time.Minute,
		JWTSecret:           secret,
		AccessCookieName:    "access_token",
		RefreshCookieName:   "refresh_token",
		DomesticCurrency:    "INR",
		DomesticCountry:     "in",
		CompanyName:         "Toko Storefront",
		CSRFCookieName:      "csrf_token",
		SecurityHeaders:     true,
		BodyLimitBytes:      1 << 20,
	}
	deps, err := app.NewDependencies(cfg, zerolog.Nop(), rdb, nil)
	require.NoError(t, err)
	router, err := app.NewRouter(deps, app.RouterOptions{})
	require.NoError(t, err)
	return stack{router: router, productCalls: &productCalls}
}

func token(t *testing.T, roles ...string) string {
	t.Helper()
	now := time.Now()
	builder := jwt.NewBuilder().Subject("cus_1").IssuedAt(now).Expiration(now.Add(time.Hour))
	if len(roles) > 0 {
		builder = builder.Claim("roles", roles)
	}
	tok, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, []byte(secret)))
	require.NoError(t, err)
	return string(signed)
}

func do(s stack, method, path, bearer, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	s := newStack(t)

	require.Equal(t, http.StatusOK, do(s, http.MethodGet, "/health/live", "", "").Code)

	rec := do(s, http.MethodGet, "/health/ready", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"redis":"ok","commerce":"ok","auth":"ok"}`, rec.Body.String())
}

func TestCustomerInvoiceDownload(t *testing.T) {
	s := newStack(t)

	rec := do(s, http.MethodGet, "/api/v1/orders/order_01/invoice", token(t), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "Invoice_INV-1042.pdf")
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestOrdersRequireAuthentication(t *testing.T) {
	s := newStack(t)

	rec := do(s, http.MethodGet, "/api/v1/orders/order_01/invoice", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(s, http.MethodGet, "/api/v1/orders", "not-a-token", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := newStack(t)

	rec := do(s, http.MethodGet, "/api/v1/admin/orders/order_01/invoice", token(t), "")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductListingIsCached(t *testing.T) {
	s := newStack(t)

	for i := 0; i < 2; i++ {
		rec := do(s, http.MethodGet, "/api/v1/products?limit=20", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "prod_1")
	}
	require.Equal(t, int32(1), s.productCalls.Load())
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newStack(t)
	body := `{"email":"asha@example.com","password":"secret-password"}`

	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	rec := do(s, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestCookieRefreshRequiresCSRFToken(t *testing.T) {
	s := newStack(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "rt"})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "CSRF_FAILED")
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newStack(t)

	rec := do(s, http.MethodGet, "/health/live", "", "")
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
