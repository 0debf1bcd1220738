package repository

import (
	"context"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
)

// StateStore is the per-client key-value storage for basket and quick view
// state. Get returns an error matching apperrors.ErrNotFound for absent keys.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// CatalogRepository reads products, categories and site settings.
type CatalogRepository interface {
	// ListProducts returns products, restricted to categoryID when non-empty.
	ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error)

	// GetProduct returns one product or an error matching apperrors.ErrNotFound.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	ListCategories(ctx context.Context) ([]domain.Category, error)

	// GetSiteSettings returns the singleton settings row or an error matching
	// apperrors.ErrNotFound when none exists.
	GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error)

	Ping(ctx context.Context) error
}

// ClientKey namespaces a fixed state key under a client ID.
func ClientKey(clientID, key string) string {
	return clientID + ":" + key
}
