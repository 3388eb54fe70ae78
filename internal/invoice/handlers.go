package invoice

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/obs"
)

// OrderSource fetches orders from the commerce backend.
type OrderSource interface {
	GetOrder(ctx context.Context, id, token string) (commerce.Order, error)
	AdminGetOrder(ctx context.Context, id string) (commerce.Order, error)
}

// Handler serves invoice downloads.
type Handler struct {
	Orders    OrderSource
	Generator *Generator
	Options   Options
	Logger    zerolog.Logger
}

// Customer streams the invoice of one of the caller's orders.
func (h *Handler) Customer(w http.ResponseWriter, r *http.Request) {
	if _, ok := common.UserID(r.Context()); !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
		return
	}
	token := common.AccessToken(r.Context())
	h.serve(w, r, "customer", func(ctx context.Context, id string) (commerce.Order, error) {
		return h.Orders.GetOrder(ctx, id, token)
	})
}

// Admin streams the invoice of any order.
func (h *Handler) Admin(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "admin", h.Orders.AdminGetOrder)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, scope string, fetch func(context.Context, string) (commerce.Order, error)) {
	if h.Orders == nil || h.Generator == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "invoice handler not configured", nil)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "order id is required", nil)
		return
	}
	logger := h.Logger.With().Str("order_id", orderID).Str("scope", scope).Logger()

	order, err := fetch(r.Context(), orderID)
	if err != nil {
		result := "upstream_error"
		switch {
		case errors.Is(err, commerce.ErrNotFound):
			result = "not_found"
			logger.Info().Msg("invoice requested for unknown order")
		case errors.Is(err, commerce.ErrMalformed):
			result = "malformed"
			logger.Error().Err(err).Msg("order failed validation")
		default:
			logger.Error().Err(err).Msg("fetch order for invoice")
		}
		obs.ObserveInvoice(scope, result, 0)
		common.WriteError(w, err)
		return
	}

	data := FromOrder(order, h.Options)
	if drift, ok := Reconcile(data); ok {
		obs.ObserveInvoiceDrift()
		logger.Warn().
			Int64("order_total", drift.OrderTotal).
			Int64("derived_total", drift.DerivedTotal).
			Int64("delta", drift.Delta()).
			Msg("invoice total drift")
	}

	start := time.Now()
	if err := h.Generator.Download(w, data); err != nil {
		if errors.Is(err, ErrStream) {
			obs.ObserveInvoice(scope, "stream_error", time.Since(start))
			logger.Warn().Err(err).Msg("client went away during invoice download")
			return
		}
		obs.ObserveInvoice(scope, "render_error", time.Since(start))
		logger.Error().Err(err).Msg("render invoice")
		common.JSONError(w, http.StatusInternalServerError, "INVOICE_RENDER_FAILED", "failed to render invoice", nil)
		return
	}
	elapsed := time.Since(start)
	obs.ObserveInvoice(scope, "ok", elapsed)
	logger.Info().
		Str("invoice", data.InvoiceNumber).
		Int("items", len(data.Items)).
		Dur("render", elapsed).
		Msg("invoice generated")
}
