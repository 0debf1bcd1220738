package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/quickview"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// QuickViewService tracks the product each client has open in quick view.
type QuickViewService struct {
	store   repository.StateStore
	catalog repository.CatalogRepository
	locks   *clientLocks
	logger  *slog.Logger
}

// NewQuickViewService creates a new quick view service.
func NewQuickViewService(store repository.StateStore, catalog repository.CatalogRepository, logger *slog.Logger) *QuickViewService {
	return &QuickViewService{
		store:   store,
		catalog: catalog,
		locks:   newClientLocks(defaultLockStripes),
		logger:  logger,
	}
}

// Current returns the open product, or nil.
func (s *QuickViewService) Current(ctx context.Context, clientID string) (*domain.Product, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}

	unlock := s.locks.lock(clientID)
	defer unlock()

	h, err := quickview.Restore(ctx, s.store, quickViewKey(clientID), s.logger)
	if err != nil {
		return nil, apperrors.Unavailable("quick view storage unavailable", err)
	}
	return h.Current(), nil
}

// Open loads productID from the catalog and makes it the open product.
func (s *QuickViewService) Open(ctx context.Context, clientID, productID string) (*domain.Product, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, apperrors.Unavailable("catalog unavailable", err)
	}

	var current *domain.Product
	err = s.update(ctx, clientID, func(h *quickview.Holder) {
		h.Set(ctx, *product)
		current = h.Current()
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Close clears the open product.
func (s *QuickViewService) Close(ctx context.Context, clientID string) error {
	if clientID == "" {
		return apperrors.InvalidInput("client id is required")
	}
	return s.update(ctx, clientID, func(h *quickview.Holder) {
		h.Clear(ctx)
	})
}

func (s *QuickViewService) update(ctx context.Context, clientID string, apply func(h *quickview.Holder)) error {
	unlock := s.locks.lock(clientID)
	defer unlock()

	key := quickViewKey(clientID)
	h, err := quickview.Restore(ctx, s.store, key, s.logger)
	if err != nil {
		return apperrors.Unavailable("quick view storage unavailable", err)
	}

	persister := quickview.NewPersister(s.store, key)
	h.Subscribe(persister.Observe)
	apply(h)

	if err := persister.Err(); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist quick view",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
		return apperrors.Unavailable("quick view storage unavailable", fmt.Errorf("persist quick view: %w", err))
	}
	return nil
}

func quickViewKey(clientID string) string {
	return repository.ClientKey(clientID, quickview.StorageKey)
}
