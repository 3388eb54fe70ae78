package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
)

// ProductSource reads products from the commerce backend.
type ProductSource interface {
	ListProducts(ctx context.Context, query url.Values) (json.RawMessage, error)
	GetProduct(ctx context.Context, handle string) (json.RawMessage, error)
}

// Service fronts the commerce product API with a Redis cache.
type Service struct {
	source       ProductSource
	cache        *Cache
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Source       ProductSource
	Cache        *Cache
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query      string
	Category   string
	Collection string
	Sort       string
	Page       int
	Limit      int
}

// ListResult is an upstream product page plus the parsed total.
type ListResult struct {
	Body  json.RawMessage
	Total int
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Source == nil {
		return nil, errors.New("catalog: product source is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		source:       cfg.Source,
		cache:        cfg.Cache,
		logger:       cfg.Logger,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Query:      strings.TrimSpace(values.Get("q")),
		Category:   strings.TrimSpace(values.Get("category")),
		Collection: strings.TrimSpace(values.Get("collection")),
		Sort:       normalizeSort(values.Get("sort")),
		Page:       1,
		Limit:      s.defaultLimit,
	}
	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		params.Limit = limit
	}
	if params.Limit > s.maxLimit {
		params.Limit = s.maxLimit
	}
	return params, nil
}

// ListProducts returns one page of products, served from cache when possible.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ListResult, error) {
	query := upstreamQuery(params)
	key := listCacheKey(query)
	body, err := s.cached(ctx, key, func() (json.RawMessage, error) {
		return s.source.ListProducts(ctx, query)
	})
	if err != nil {
		return ListResult{}, err
	}
	var page struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(body, &page)
	return ListResult{Body: body, Total: page.Count, Page: params.Page, Limit: params.Limit}, nil
}

// GetProduct returns one product by handle.
func (s *Service) GetProduct(ctx context.Context, handle string) (json.RawMessage, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, badRequest("handle", "handle is required", nil)
	}
	return s.cached(ctx, detailCacheKey(handle), func() (json.RawMessage, error) {
		return s.source.GetProduct(ctx, handle)
	})
}

// cached serves key from Redis, falling back to load. Cache failures are
// logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, load func() (json.RawMessage, error)) (json.RawMessage, error) {
	if doc, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
	} else if ok {
		return doc, nil
	}
	doc, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, doc); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
	return doc, nil
}

func upstreamQuery(params ListParams) url.Values {
	query := url.Values{}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Category != "" {
		query.Set("category_id[]", params.Category)
	}
	if params.Collection != "" {
		query.Set("collection_id[]", params.Collection)
	}
	if params.Sort != "" {
		query.Set("order", params.Sort)
	}
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("offset", strconv.Itoa((params.Page-1)*params.Limit))
	return query
}

func listCacheKey(query url.Values) string {
	return "catalog:products:list:" + common.Sha256Hex(query.Encode())
}

func detailCacheKey(handle string) string {
	return "catalog:products:detail:" + handle
}

func normalizeSort(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title:asc":
		return "title"
	case "title:desc":
		return "-title"
	case "newest":
		return "-created_at"
	case "oldest":
		return "created_at"
	default:
		return ""
	}
}

func badRequest(field, message string, err error) *common.AppError {
	return &common.AppError{
		Code:       "BAD_REQUEST",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details: map[string]any{
			"field": field,
		},
	}
}
