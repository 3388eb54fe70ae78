package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/common"
)

const maxPerPage = 100

// CustomerSource reads orders on behalf of a signed-in customer.
type CustomerSource interface {
	ListOrders(ctx context.Context, token string, limit, offset int) (commerce.OrderList, error)
	GetOrder(ctx context.Context, id, token string) (commerce.Order, error)
}

// Handler serves the customer's own orders.
type Handler struct {
	Orders CustomerSource
	Logger zerolog.Logger
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order source not configured", nil)
		return
	}
	if _, ok := common.UserID(r.Context()); !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	page, perPage := pageParams(r)
	list, err := h.Orders.ListOrders(r.Context(), common.AccessToken(r.Context()), perPage, (page-1)*perPage)
	if err != nil {
		h.Logger.Error().Err(err).Msg("list customer orders")
		common.WriteError(w, err)
		return
	}
	writeList(w, list, page, perPage)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Orders == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order source not configured", nil)
		return
	}
	if _, ok := common.UserID(r.Context()); !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	ord, err := h.Orders.GetOrder(r.Context(), orderID, common.AccessToken(r.Context()))
	if err != nil {
		h.Logger.Error().Err(err).Str("order_id", orderID).Msg("get customer order")
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": Describe(ord, "/api/v1/orders")})
}

func pageParams(r *http.Request) (page, perPage int) {
	page, perPage = common.ParsePagination(r, 20)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

func writeList(w http.ResponseWriter, list commerce.OrderList, page, perPage int) {
	response := make([]Summary, 0, len(list.Orders))
	for _, ord := range list.Orders {
		response = append(response, Summarize(ord))
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(list.Count))
	common.JSON(w, http.StatusOK, map[string]any{
		"data": response,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: list.Count,
		},
	})
}
