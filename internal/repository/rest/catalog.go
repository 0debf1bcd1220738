// Package rest reads the catalog from the hosted backend's PostgREST API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/httpclient"
)

const upstream = "catalog backend"

// Getter performs GET requests relative to the backend's base URL.
// *httpclient.CircuitBreakerClient satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (*http.Response, error)
}

// CatalogRepository implements repository.CatalogRepository over PostgREST.
type CatalogRepository struct {
	client Getter
}

// NewCatalogRepository creates a REST-backed catalog repository.
func NewCatalogRepository(client Getter) *CatalogRepository {
	return &CatalogRepository{client: client}
}

// NewHTTPClient builds the breaker-guarded client for the backend at baseURL,
// authenticating with apiKey.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *httpclient.CircuitBreakerClient {
	cfg := httpclient.DefaultConfig()
	cfg.BaseURL = baseURL
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.Headers = map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	}
	return httpclient.NewCircuitBreakerClient(httpclient.New(cfg), httpclient.DefaultCircuitBreakerConfig(upstream), logger)
}

// ListProducts returns products, newest first.
func (r *CatalogRepository) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	q := url.Values{
		"select": {"id,name,price,images,sizes_stock,category_id,description"},
		"order":  {"created_at.desc,id.asc"},
	}
	if categoryID != "" {
		q.Set("category_id", "eq."+categoryID)
	}

	products := []domain.Product{}
	if err := r.get(ctx, "/products", q, &products); err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, nil
}

// GetProduct returns the product with the given ID.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	q := url.Values{
		"select": {"id,name,price,images,sizes_stock,category_id,description"},
		"id":     {"eq." + id},
		"limit":  {"1"},
	}

	var products []domain.Product
	if err := r.get(ctx, "/products", q, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperrors.NotFound("product", id)
	}
	p := products[0]
	p.Normalize()
	return &p, nil
}

// ListCategories returns categories ordered by sort order then name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	q := url.Values{
		"select": {"id,name,sort_order"},
		"order":  {"sort_order.asc.nullslast,name.asc"},
	}

	cats := []domain.Category{}
	if err := r.get(ctx, "/categories", q, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// GetSiteSettings returns the first settings row.
func (r *CatalogRepository) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	q := url.Values{"select": {"*"}, "limit": {"1"}}

	var rows []domain.SiteSettings
	if err := r.get(ctx, "/site_settings", q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFound("site settings", "1")
	}
	return &rows[0], nil
}

// Ping issues a minimal categories query.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	var cats []domain.Category
	return r.get(ctx, "/categories", url.Values{"select": {"id"}, "limit": {"1"}}, &cats)
}

func (r *CatalogRepository) get(ctx context.Context, path string, q url.Values, dst any) error {
	resp, err := r.client.Get(ctx, path, q)
	if err != nil {
		return apperrors.Unavailable(upstream+" is unavailable", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpclient.ParseResponseError(resp, upstream)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(dst); err != nil {
		return apperrors.Unavailable(upstream+" returned an unreadable response", fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
