package authgw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// ErrUnavailable is wrapped by errors for network failures and 5xx replies.
var ErrUnavailable = errors.New("authgw: gateway unavailable")

const maxBodyBytes = 1 << 20

// Response is a gateway reply passed back to the caller unchanged. Client
// errors from the gateway are responses, not Go errors.
type Response struct {
	Status int
	Body   json.RawMessage
}

// OK reports a 2xx status.
func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Client calls the external authentication gateway.
type Client struct {
	BaseURL string
	HTTP    resilience.HTTPClient
}

func (c *Client) Register(ctx context.Context, payload any) (Response, error) {
	return c.Forward(ctx, http.MethodPost, "/auth/register", payload, "")
}

func (c *Client) Login(ctx context.Context, payload any) (Response, error) {
	return c.Forward(ctx, http.MethodPost, "/auth/login", payload, "")
}

func (c *Client) Refresh(ctx context.Context, payload any) (Response, error) {
	return c.Forward(ctx, http.MethodPost, "/auth/refresh", payload, "")
}

func (c *Client) Me(ctx context.Context, token string) (Response, error) {
	return c.Forward(ctx, http.MethodGet, "/auth/me", nil, token)
}

func (c *Client) ForgotPassword(ctx context.Context, payload any) (Response, error) {
	return c.Forward(ctx, http.MethodPost, "/auth/password/forgot", payload, "")
}

func (c *Client) ResetPassword(ctx context.Context, payload any) (Response, error) {
	return c.Forward(ctx, http.MethodPost, "/auth/password/reset", payload, "")
}

// Ping checks the gateway health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.Forward(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return err
	}
	if !resp.OK() {
		return fmt.Errorf("%w: health status %d", ErrUnavailable, resp.Status)
	}
	return nil
}

// Forward sends payload as JSON to path and returns the gateway's reply.
func (c *Client) Forward(ctx context.Context, method, path string, payload any, token string) (Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return Response{}, fmt.Errorf("authgw: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("authgw: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return Response{}, common.NewAppError("UPSTREAM_ERROR", "authentication gateway unavailable", http.StatusBadGateway, fmt.Errorf("%w: %v", ErrUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, common.NewAppError("UPSTREAM_ERROR", "authentication gateway unavailable", http.StatusBadGateway, fmt.Errorf("%w: read body: %v", ErrUnavailable, err))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return Response{}, common.NewAppError("UPSTREAM_MALFORMED", "authentication gateway returned an unexpected payload", http.StatusBadGateway, errors.New("authgw: response is not valid JSON"))
	}
	return Response{Status: resp.StatusCode, Body: data}, nil
}
