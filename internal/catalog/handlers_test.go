package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/catalog"
	"github.com/noah-isme/toko-storefront/internal/commerce"
	"github.com/noah-isme/toko-storefront/internal/common"
)

type fakeProducts struct {
	listCalls   int
	detailCalls int
	lastQuery   url.Values
}

func (f *fakeProducts) ListProducts(_ context.Context, query url.Values) (json.RawMessage, error) {
	f.listCalls++
	f.lastQuery = query
	return json.RawMessage(`{"products":[{"id":"prod_1","handle":"cotton-kurta"}],"count":42,"offset":0,"limit":20}`), nil
}

func (f *fakeProducts) GetProduct(_ context.Context, handle string) (json.RawMessage, error) {
	f.detailCalls++
	if handle != "cotton-kurta" {
		return nil, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, commerce.ErrNotFound)
	}
	return json.RawMessage(`{"id":"prod_1","handle":"cotton-kurta"}`), nil
}

func newCatalog(t *testing.T) (http.Handler, *fakeProducts) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	source := &fakeProducts{}
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Source:       source,
		Cache:        catalog.NewCache(client, time.Minute),
		Logger:       zerolog.Nop(),
		DefaultLimit: 20,
		MaxLimit:     100,
	})
	require.NoError(t, err)
	h := catalog.NewHandler(catalog.HandlerConfig{Service: svc})

	r := chi.NewRouter()
	r.Get("/api/v1/products", h.Products)
	r.Get("/api/v1/products/{handle}", h.ProductDetail)
	r.Get("/api/v1/search", h.Search)
	return r, source
}

func TestProductsListIsCached(t *testing.T) {
	router, source := newCatalog(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=2&limit=10&sort=title:desc", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "42", rec.Header().Get("X-Total-Count"))

		var body struct {
			Data       json.RawMessage   `json:"data"`
			Pagination common.Pagination `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, string(body.Data), "cotton-kurta")
		require.Equal(t, 2, body.Pagination.Page)
		require.Equal(t, 10, body.Pagination.PerPage)
	}
	require.Equal(t, 1, source.listCalls)
	require.Equal(t, "10", source.lastQuery.Get("offset"))
	require.Equal(t, "-title", source.lastQuery.Get("order"))
}

func TestProductsRejectsBadPage(t *testing.T) {
	router, _ := newCatalog(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products?page=zero", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "BAD_REQUEST")
}

func TestProductDetail(t *testing.T) {
	router, source := newCatalog(t)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/cotton-kurta", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "prod_1")
	}
	require.Equal(t, 1, source.detailCalls)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchSampleData(t *testing.T) {
	router, _ := newCatalog(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/search?q=cotton+print", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []catalog.SearchHit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.GreaterOrEqual(t, len(body.Data), 3)
	require.Equal(t, "Block Print Kurti", body.Data[0].Title)
	require.Equal(t, "Jaipuri Cotton Bedsheet", body.Data[1].Title)
}

func TestSearchEmptyQuery(t *testing.T) {
	require.Empty(t, catalog.Search("   ", 10))
	require.Len(t, catalog.Search("cotton", 1), 1)
}
