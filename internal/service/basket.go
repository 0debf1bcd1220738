package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/basket"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/event"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// BasketService runs basket operations for one client at a time: restore the
// client's basket, apply the mutation, persist, and return the new view.
type BasketService struct {
	store   repository.StateStore
	catalog repository.CatalogRepository
	events  *event.Producer
	locks   *clientLocks
	logger  *slog.Logger
}

// NewBasketService creates a new basket service. events may be nil.
func NewBasketService(store repository.StateStore, catalog repository.CatalogRepository, events *event.Producer, logger *slog.Logger) *BasketService {
	return &BasketService{
		store:   store,
		catalog: catalog,
		events:  events,
		locks:   newClientLocks(defaultLockStripes),
		logger:  logger,
	}
}

// GetBasket returns the client's current basket.
func (s *BasketService) GetBasket(ctx context.Context, clientID string) (*domain.BasketView, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}

	unlock := s.locks.lock(clientID)
	defer unlock()

	m, err := basket.Restore(ctx, s.store, basketKey(clientID), s.logger)
	if err != nil {
		return nil, apperrors.Unavailable("basket storage unavailable", err)
	}

	view := domain.NewBasketView(m.Lines())
	return &view, nil
}

// AddItem adds a caller-described candidate line.
func (s *BasketService) AddItem(ctx context.Context, clientID string, c domain.Candidate) (*domain.BasketView, error) {
	view, err := s.mutate(ctx, clientID, func(m *basket.Manager) {
		m.AddItem(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to basket",
		slog.String("client_id", clientID),
		slog.String("product_id", c.ProductID),
		slog.String("size", c.Size),
		slog.Int("quantity", c.RequestedQuantity()),
	)
	return view, nil
}

// AddProduct resolves productID from the catalog and adds quantity of size.
// The line's ceiling is the product's stock for that size.
func (s *BasketService) AddProduct(ctx context.Context, clientID, productID, size string, quantity int) (*domain.BasketView, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}
	if productID == "" || size == "" {
		return nil, apperrors.InvalidInput("product id and size are required")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, apperrors.Unavailable("catalog unavailable", err)
	}
	if product.StockFor(size) <= 0 {
		return nil, apperrors.OutOfStock(productID, size)
	}

	return s.AddItem(ctx, clientID, product.Candidate(size, quantity))
}

// RemoveItem removes the line with the given identity key.
func (s *BasketService) RemoveItem(ctx context.Context, clientID, uniqueID string) (*domain.BasketView, error) {
	view, err := s.mutate(ctx, clientID, func(m *basket.Manager) {
		m.RemoveItem(ctx, uniqueID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from basket",
		slog.String("client_id", clientID),
		slog.String("unique_id", uniqueID),
	)
	return view, nil
}

// UpdateItemQuantity sets the quantity of a line, clamped to its ceiling.
func (s *BasketService) UpdateItemQuantity(ctx context.Context, clientID, uniqueID string, quantity int) (*domain.BasketView, error) {
	view, err := s.mutate(ctx, clientID, func(m *basket.Manager) {
		m.UpdateItemQuantity(ctx, uniqueID, quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "basket item quantity updated",
		slog.String("client_id", clientID),
		slog.String("unique_id", uniqueID),
		slog.Int("quantity", quantity),
	)
	return view, nil
}

// ClearBasket empties the basket.
func (s *BasketService) ClearBasket(ctx context.Context, clientID string) (*domain.BasketView, error) {
	view, err := s.mutate(ctx, clientID, func(m *basket.Manager) {
		m.Clear(ctx)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "basket cleared", slog.String("client_id", clientID))
	return view, nil
}

func (s *BasketService) mutate(ctx context.Context, clientID string, apply func(m *basket.Manager)) (*domain.BasketView, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}

	unlock := s.locks.lock(clientID)
	defer unlock()

	key := basketKey(clientID)
	m, err := basket.Restore(ctx, s.store, key, s.logger)
	if err != nil {
		return nil, apperrors.Unavailable("basket storage unavailable", err)
	}

	persister := basket.NewPersister(s.store, key, s.logger)
	m.Subscribe(persister.Observe)
	if s.events != nil {
		publish := s.events.Observer(clientID)
		m.Subscribe(func(ctx context.Context, lines []domain.BasketLine) {
			if persister.Err() == nil {
				publish(ctx, lines)
			}
		})
	}

	apply(m)

	if err := persister.Err(); err != nil {
		return nil, apperrors.Unavailable("basket storage unavailable", fmt.Errorf("persist basket: %w", err))
	}

	view := domain.NewBasketView(m.Lines())
	return &view, nil
}

func basketKey(clientID string) string {
	return repository.ClientKey(clientID, basket.StorageKey)
}
