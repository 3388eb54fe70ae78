package cart

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// Source is the commerce backend's cart API.
type Source interface {
	CreateCart(ctx context.Context, payload json.RawMessage, token string) (json.RawMessage, error)
	GetCart(ctx context.Context, cartID, token string) (json.RawMessage, error)
	AddLineItem(ctx context.Context, cartID string, payload json.RawMessage, token string) (json.RawMessage, error)
	UpdateLineItem(ctx context.Context, cartID, lineID string, payload json.RawMessage, token string) (json.RawMessage, error)
	DeleteLineItem(ctx context.Context, cartID, lineID, token string) (json.RawMessage, error)
}

// Handler proxies cart operations to the commerce backend.
type Handler struct {
	Carts  Source
	Logger zerolog.Logger
}

type createRequest struct {
	RegionID string `json:"region_id,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

type addLineRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=99"`
}

type updateLineRequest struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=99"`
}

// Create opens a cart for a guest or signed-in shopper.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := common.DecodeAndValidate(r, &req); err != nil {
			common.WriteError(w, err)
			return
		}
	}
	h.forward(w, r, http.StatusCreated, "create cart", func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.Carts.CreateCart(ctx, mustMarshal(req), token)
	})
}

// Get returns a cart.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartId")
	h.forward(w, r, http.StatusOK, "get cart", func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.Carts.GetCart(ctx, cartID, token)
	})
}

// AddLine adds a variant to a cart.
func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	cartID := chi.URLParam(r, "cartId")
	h.forward(w, r, http.StatusOK, "add line item", func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.Carts.AddLineItem(ctx, cartID, mustMarshal(req), token)
	})
}

// UpdateLine changes a line item's quantity.
func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req updateLineRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	cartID, lineID := chi.URLParam(r, "cartId"), chi.URLParam(r, "lineId")
	h.forward(w, r, http.StatusOK, "update line item", func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.Carts.UpdateLineItem(ctx, cartID, lineID, mustMarshal(req), token)
	})
}

// DeleteLine removes a line item.
func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	cartID, lineID := chi.URLParam(r, "cartId"), chi.URLParam(r, "lineId")
	h.forward(w, r, http.StatusOK, "delete line item", func(ctx context.Context, token string) (json.RawMessage, error) {
		return h.Carts.DeleteLineItem(ctx, cartID, lineID, token)
	})
}

func (h *Handler) forward(w http.ResponseWriter, r *http.Request, status int, action string, call func(context.Context, string) (json.RawMessage, error)) {
	if h.Carts == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart source not configured", nil)
		return
	}
	body, err := call(r.Context(), common.AccessToken(r.Context()))
	if err != nil {
		h.Logger.Error().Err(err).Str("action", action).Msg("cart proxy failed")
		common.WriteError(w, err)
		return
	}
	common.RawJSON(w, status, body)
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
