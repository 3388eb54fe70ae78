package authgw

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Gateway is the subset of Client used by Handler.
type Gateway interface {
	Register(ctx context.Context, payload any) (Response, error)
	Login(ctx context.Context, payload any) (Response, error)
	Refresh(ctx context.Context, payload any) (Response, error)
	Me(ctx context.Context, token string) (Response, error)
	ForgotPassword(ctx context.Context, payload any) (Response, error)
	ResetPassword(ctx context.Context, payload any) (Response, error)
}

// Handler exposes the authentication gateway to storefront clients.
type Handler struct {
	Gateway           Gateway
	AccessCookieName  string
	RefreshCookieName string
	CookieDomain      string
	CookieSecure      bool
	CookieSameSite    http.SameSite
	Logger            zerolog.Logger
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	h.relay(w, "register", func() (Response, error) { return h.Gateway.Register(r.Context(), req) })
}

// Login handles POST /api/v1/auth/login and mirrors issued tokens into cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	h.relay(w, "login", func() (Response, error) {
		resp, err := h.Gateway.Login(r.Context(), req)
		if err == nil && resp.OK() {
			h.setAuthCookies(w, resp.Body)
		}
		return resp, err
	})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token may come from
// the body or the refresh cookie.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
			return
		}
	}
	if req.RefreshToken == "" && h.RefreshCookieName != "" {
		if cookie, err := r.Cookie(h.RefreshCookieName); err == nil {
			req.RefreshToken = strings.TrimSpace(cookie.Value)
		}
	}
	if req.RefreshToken == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing refresh token", nil)
		return
	}
	h.relay(w, "refresh", func() (Response, error) {
		resp, err := h.Gateway.Refresh(r.Context(), req)
		if err == nil && resp.OK() {
			h.setAuthCookies(w, resp.Body)
		}
		return resp, err
	})
}

// Me handles GET /api/v1/auth/me. It must run behind RequireAuth.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := common.AccessToken(r.Context())
	if token == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	h.relay(w, "me", func() (Response, error) { return h.Gateway.Me(r.Context(), token) })
}

// ForgotPassword handles POST /api/v1/auth/password/forgot.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	h.relay(w, "forgot_password", func() (Response, error) { return h.Gateway.ForgotPassword(r.Context(), req) })
}

// ResetPassword handles POST /api/v1/auth/password/reset.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	h.relay(w, "reset_password", func() (Response, error) {
		resp, err := h.Gateway.ResetPassword(r.Context(), req)
		if err == nil && resp.OK() {
			h.clearAuthCookies(w)
		}
		return resp, err
	})
}

// Logout handles POST /api/v1/auth/logout by dropping the session cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) relay(w http.ResponseWriter, action string, call func() (Response, error)) {
	if h.Gateway == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth gateway not configured", nil)
		return
	}
	resp, err := call()
	if err != nil {
		h.Logger.Error().Err(err).Str("action", action).Msg("auth gateway call failed")
		common.WriteError(w, err)
		return
	}
	if resp.Status >= http.StatusInternalServerError {
		h.Logger.Warn().Int("status", resp.Status).Str("action", action).Msg("auth gateway error")
	}
	common.RawJSON(w, resp.Status, resp.Body)
}

func (h *Handler) setAuthCookies(w http.ResponseWriter, body json.RawMessage) {
	var tokens tokenPair
	if err := json.Unmarshal(body, &tokens); err != nil {
		return
	}
	if h.AccessCookieName != "" && tokens.AccessToken != "" {
		cookie := h.cookie(h.AccessCookieName, tokens.AccessToken)
		if tokens.ExpiresIn > 0 {
			cookie.MaxAge = tokens.ExpiresIn
			cookie.Expires = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
		}
		http.SetCookie(w, cookie)
	}
	if h.RefreshCookieName != "" && tokens.RefreshToken != "" {
		http.SetCookie(w, h.cookie(h.RefreshCookieName, tokens.RefreshToken))
	}
}

func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{h.AccessCookieName, h.RefreshCookieName} {
		if name == "" {
			continue
		}
		cookie := h.cookie(name, "")
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
	}
}

func (h *Handler) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   h.CookieDomain,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: h.CookieSameSite,
	}
}
