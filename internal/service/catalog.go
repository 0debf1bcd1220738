package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// CatalogService serves read-only catalog data.
type CatalogService struct {
	repo   repository.CatalogRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.CatalogRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListProducts returns products, optionally restricted to one category.
func (s *CatalogService) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct returns one product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListCategories returns categories by sort order then name, unordered last.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	domain.SortCategories(cats)
	return cats, nil
}

// SiteSettings returns the store settings. A missing row or any fetch error
// yields empty settings; failures are logged, never returned.
func (s *CatalogService) SiteSettings(ctx context.Context) domain.SiteSettings {
	settings, err := s.repo.GetSiteSettings(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to fetch site settings, using defaults",
				slog.String("error", err.Error()),
			)
		}
		return domain.SiteSettings{}
	}
	return *settings
}
