package security

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// CSRF protects cookie-based flows using the double-submit technique. Only
// requests carrying one of SessionCookies are checked; a request without
// them has no ambient authority to abuse.
type CSRF struct {
	Header         string
	Cookie         string
	SessionCookies []string
	Domain         string
	Secure         bool
}

func (c CSRF) headerName() string {
	if h := strings.TrimSpace(c.Header); h != "" {
		return h
	}
	return "X-CSRF-Token"
}

func (c CSRF) cookieName() string {
	if name := strings.TrimSpace(c.Cookie); name != "" {
		return name
	}
	return "csrf_token"
}

// Middleware enforces that unsafe cookie-authenticated requests include a
// token header matching the CSRF cookie.
func (c CSRF) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}
		auth := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(auth), "bearer ") || !c.hasSession(r) {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(r.Header.Get(c.headerName()))
		if token == "" {
			forbidden(w, "missing csrf token")
			return
		}
		cookie, err := r.Cookie(c.cookieName())
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			forbidden(w, "missing csrf cookie")
			return
		}
		if !constantTimeEqual(token, cookie.Value) {
			forbidden(w, "invalid csrf token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Issue sets a fresh CSRF cookie before the wrapped handler runs. The cookie
// is readable by scripts so the storefront can echo it in the header.
func (c CSRF) Issue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     c.cookieName(),
			Value:    uuid.NewString(),
			Path:     "/",
			Domain:   c.Domain,
			Secure:   c.Secure,
			SameSite: http.SameSiteStrictMode,
		})
		next.ServeHTTP(w, r)
	})
}

func (c CSRF) hasSession(r *http.Request) bool {
	for _, name := range c.SessionCookies {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return true
		}
	}
	return false
}

func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func forbidden(w http.ResponseWriter, message string) {
	common.JSONError(w, http.StatusForbidden, "CSRF_FAILED", message, nil)
}
