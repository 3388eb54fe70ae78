package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/order"
)

type fakeSource struct {
	list      commerce.OrderList
	order     commerce.Order
	err       error
	gotLimit  int
	gotOffset int
	gotToken  string
}

func (f *fakeSource) ListOrders(_ context.Context, token string, limit, offset int) (commerce.OrderList, error) {
	f.gotToken, f.gotLimit, f.gotOffset = token, limit, offset
	return f.list, f.err
}

func (f *fakeSource) GetOrder(_ context.Context, id, token string) (commerce.Order, error) {
	f.gotToken = token
	return f.order, f.err
}

func (f *fakeSource) AdminListOrders(_ context.Context, limit, offset int) (commerce.OrderList, error) {
	f.gotLimit, f.gotOffset = limit, offset
	return f.list, f.err
}

func (f *fakeSource) AdminGetOrder(_ context.Context, id string) (commerce.Order, error) {
	return f.order, f.err
}

func sampleOrder() commerce.Order {
	display := int64(1042)
	return commerce.Order{
		ID:                "order_01",
		DisplayID:         &display,
		Status:            "pending",
		PaymentStatus:     "captured",
		FulfillmentStatus: "shipped",
		CreatedAt:         time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC),
		CurrencyCode:      "inr",
		Subtotal:          100000,
		TaxTotal:          18000,
		Total:             118000,
		Items:             []commerce.LineItem{{ID: "item_1", Title: "Kurta", Quantity: 2, UnitPrice: 50000, Total: 100000}},
		Payments:          []commerce.Payment{{ProviderID: "pp_stripe_stripe"}},
	}
}

func authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := common.WithUserID(r.Context(), "cus_1")
		ctx = common.WithAccessToken(ctx, "tok")
		h(w, r.WithContext(ctx))
	}
}

func TestCustomerList(t *testing.T) {
	src := &fakeSource{list: commerce.OrderList{Orders: []commerce.Order{sampleOrder()}, Count: 41}}
	h := &order.Handler{Orders: src, Logger: zerolog.Nop()}

	rec := httptest.NewRecorder()
	authed(h.List)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=3&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "41", rec.Header().Get("X-Total-Count"))
	require.Equal(t, 10, src.gotLimit)
	require.Equal(t, 20, src.gotOffset)
	require.Equal(t, "tok", src.gotToken)

	var body struct {
		Data       []order.Summary   `json:"data"`
		Pagination common.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	got := body.Data[0]
	require.Equal(t, "1042", got.Number)
	require.Equal(t, int64(1180), got.Total)
	require.Equal(t, "Rs. 1,180.00", got.TotalDisplay)
	require.Equal(t, "shipped", got.Stage.Key)
	require.Equal(t, "Paid", got.PaymentStatus)
	require.Equal(t, int64(2), got.ItemCount)
	require.Equal(t, "05 Mar 2024", got.PlacedOn)
	require.Equal(t, 41, body.Pagination.TotalItems)
}

func TestCustomerListRequiresAuth(t *testing.T) {
	h := &order.Handler{Orders: &fakeSource{}, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCustomerGetDetail(t *testing.T) {
	h := &order.Handler{Orders: &fakeSource{order: sampleOrder()}, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Get("/api/v1/orders/{orderId}", authed(h.Get))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/order_01", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data order.Detail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1000), body.Data.Subtotal)
	require.Equal(t, int64(180), body.Data.Tax)
	require.Equal(t, "Stripe", body.Data.PaymentMethod)
	require.Equal(t, "/api/v1/orders/order_01/invoice", body.Data.InvoicePath)
	require.Equal(t, int64(500), body.Data.Items[0].UnitPrice)
}

func TestAdminGetNotFound(t *testing.T) {
	notFound := common.NewAppError("NOT_FOUND", "order not found", http.StatusNotFound, commerce.ErrNotFound)
	h := &order.AdminHandler{Orders: &fakeSource{err: notFound}, Logger: zerolog.Nop()}
	r := chi.NewRouter()
	r.Get("/api/v1/admin/orders/{orderId}", h.Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestAdminListCapsPageSize(t *testing.T) {
	src := &fakeSource{}
	h := &order.AdminHandler{Orders: src, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders?limit=500", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 100, src.gotLimit)
	require.Equal(t, 0, src.gotOffset)
}
