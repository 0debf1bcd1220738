package service

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/repository/memory"
)

// --- Mock CatalogRepository ---

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockCatalog) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *mockCatalog) GetSiteSettings(ctx context.Context) (*domain.SiteSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SiteSettings), args.Error(1)
}

func (m *mockCatalog) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// --- State store with injectable failures ---

type flakyStore struct {
	*memory.StateStore
	getErr error
	setErr error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{StateStore: memory.NewStateStore(0)}
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.StateStore.Get(ctx, key)
}

func (s *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.StateStore.Set(ctx, key, value)
}

// --- Test Helpers ---

var errStorageDown = errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func shirtProduct() *domain.Product {
	return &domain.Product{
		ID:         "p1",
		Name:       "Shirt",
		Price:      decimal.RequireFromString("20"),
		Images:     []string{"shirt-front.jpg", "shirt-back.jpg"},
		SizesStock: map[string]int{"M": 3, "XL": 0},
	}
}

const clientA = "6f1c2f0e-8a4e-4c1b-9f43-0d6a0b6c8e11"
