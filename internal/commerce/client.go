package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

var (
	// ErrNotFound is returned when the backend has no such resource or returns a null order.
	ErrNotFound = errors.New("commerce: not found")
	// ErrUpstream covers network failures, open breakers and 5xx responses.
	ErrUpstream = errors.New("commerce: upstream unavailable")
	// ErrMalformed is returned when a payload fails boundary validation.
	ErrMalformed = errors.New("commerce: malformed payload")
	// ErrRejected wraps 4xx responses other than 404.
	ErrRejected = errors.New("commerce: request rejected")
)

const maxBodyBytes = 8 << 20

// Client talks to the headless commerce backend's store and admin APIs.
type Client struct {
	BaseURL        string
	PublishableKey string
	AdminToken     string
	HTTP           resilience.HTTPClient
}

type credential func(*http.Request)

func (c *Client) store(token string) credential {
	return func(req *http.Request) {
		if c.PublishableKey != "" {
			req.Header.Set("x-publishable-api-key", c.PublishableKey)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func (c *Client) admin() credential {
	return func(req *http.Request) {
		if c.AdminToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.AdminToken)
		}
	}
}

// GetOrder retrieves one order on behalf of the customer owning token.
func (c *Client) GetOrder(ctx context.Context, id, token string) (Order, error) {
	var body struct {
		Order *Order `json:"order"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/store/orders/"+url.PathEscape(id), nil, nil, c.store(token), &body); err != nil {
		return Order{}, err
	}
	return checkedOrder(body.Order)
}

// ListOrders lists the customer's orders, newest first.
func (c *Client) ListOrders(ctx context.Context, token string, limit, offset int) (OrderList, error) {
	query := pageQuery(limit, offset)
	query.Set("order", "-created_at")
	var list OrderList
	if err := c.doJSON(ctx, http.MethodGet, "/store/orders", query, nil, c.store(token), &list); err != nil {
		return OrderList{}, err
	}
	return list, nil
}

// AdminGetOrder retrieves any order using the admin credential.
func (c *Client) AdminGetOrder(ctx context.Context, id string) (Order, error) {
	var body struct {
		Order *Order `json:"order"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders/"+url.PathEscape(id), nil, nil, c.admin(), &body); err != nil {
		return Order{}, err
	}
	return checkedOrder(body.Order)
}

// AdminListOrders lists all orders using the admin credential.
func (c *Client) AdminListOrders(ctx context.Context, limit, offset int) (OrderList, error) {
	query := pageQuery(limit, offset)
	query.Set("order", "-created_at")
	var list OrderList
	if err := c.doJSON(ctx, http.MethodGet, "/admin/orders", query, nil, c.admin(), &list); err != nil {
		return OrderList{}, err
	}
	return list, nil
}

// ListProducts proxies the product listing with the caller's query string.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, "/store/products", query, nil, c.store(""))
}

// GetProduct looks a product up by its handle.
func (c *Client) GetProduct(ctx context.Context, handle string) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("handle", handle)
	var body struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/store/products", query, nil, c.store(""), &body); err != nil {
		return nil, err
	}
	if len(body.Products) == 0 {
		return nil, notFound("product not found")
	}
	return body.Products[0], nil
}

// CreateCart opens a new cart.
func (c *Client) CreateCart(ctx context.Context, payload json.RawMessage, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "/store/carts", nil, payload, c.store(token))
}

// GetCart retrieves a cart.
func (c *Client) GetCart(ctx context.Context, cartID, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodGet, "/store/carts/"+url.PathEscape(cartID), nil, nil, c.store(token))
}

// AddLineItem adds a variant to a cart.
func (c *Client) AddLineItem(ctx context.Context, cartID string, payload json.RawMessage, token string) (json.RawMessage, error) {
	return c.raw(ctx, http.MethodPost, "/store/carts/"+url.PathEscape(cartID)+"/line-items", nil, payload, c.store(token))
}

// UpdateLineItem changes a line item, typically its quantity.
func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, payload json.RawMessage, token string) (json.RawMessage, error) {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	return c.raw(ctx, http.MethodPost, path, nil, payload, c.store(token))
}

// DeleteLineItem removes a line item from a cart.
func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID, token string) (json.RawMessage, error) {
	path := "/store/carts/" + url.PathEscape(cartID) + "/line-items/" + url.PathEscape(lineID)
	return c.raw(ctx, http.MethodDelete, path, nil, nil, c.store(token))
}

// Ping checks the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.raw(ctx, http.MethodGet, "/health", nil, nil, func(*http.Request) {})
	return err
}

func (c *Client) raw(ctx context.Context, method, path string, query url.Values, payload []byte, cred credential) (json.RawMessage, error) {
	body, err := c.do(ctx, method, path, query, payload, cred)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(body) {
		return nil, malformed(errors.New("response is not valid JSON"))
	}
	return json.RawMessage(body), nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, payload []byte, cred credential, out any) error {
	body, err := c.do(ctx, method, path, query, payload, cred)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return malformed(err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, cred credential) ([]byte, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	cred(req)

	resp, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return nil, common.NewAppError("UPSTREAM_ERROR", "commerce backend unavailable", http.StatusBadGateway, fmt.Errorf("%w: %v", ErrUpstream, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, common.NewAppError("UPSTREAM_ERROR", "commerce backend unavailable", http.StatusBadGateway, fmt.Errorf("%w: read body: %v", ErrUpstream, err))
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, notFound(upstreamMessage(body, "resource not found"))
	case resp.StatusCode >= http.StatusBadRequest:
		appErr := common.NewAppError("UPSTREAM_REJECTED", upstreamMessage(body, http.StatusText(resp.StatusCode)), resp.StatusCode,
			fmt.Errorf("%w: status %s", ErrRejected, strconv.Itoa(resp.StatusCode)))
		return nil, appErr
	}
	return body, nil
}

func checkedOrder(o *Order) (Order, error) {
	if o == nil {
		return Order{}, notFound("order not found")
	}
	if err := Validate(*o); err != nil {
		return Order{}, malformed(err)
	}
	return *o, nil
}

func pageQuery(limit, offset int) url.Values {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	return query
}

func notFound(message string) error {
	return common.NewAppError("NOT_FOUND", message, http.StatusNotFound, ErrNotFound)
}

func malformed(err error) error {
	if !errors.Is(err, ErrMalformed) {
		err = fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return common.NewAppError("UPSTREAM_MALFORMED", "commerce backend returned an unexpected payload", http.StatusBadGateway, err)
}

func upstreamMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		return payload.Message
	}
	return fallback
}
