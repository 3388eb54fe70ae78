package order

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/common"
)

// AdminSource reads any order with the admin credential.
type AdminSource interface {
	AdminListOrders(ctx context.Context, limit, offset int) (commerce.OrderList, error)
	AdminGetOrder(ctx context.Context, id string) (commerce.Order, error)
}

// AdminHandler provides administrative order views.
type AdminHandler struct {
	Orders AdminSource
	Logger zerolog.Logger
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order source not configured", nil)
		return
	}
	page, perPage := pageParams(r)
	list, err := h.Orders.AdminListOrders(r.Context(), perPage, (page-1)*perPage)
	if err != nil {
		h.Logger.Error().Err(err).Msg("list orders")
		common.WriteError(w, err)
		return
	}
	writeList(w, list, page, perPage)
}

func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order source not configured", nil)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	ord, err := h.Orders.AdminGetOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Error().Err(err).Str("order_id", orderID).Msg("get order")
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Describe(ord, "/api/v1/admin/orders")})
}
