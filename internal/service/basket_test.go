package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/event"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
	pkgkafka "github.com/omar3814/baeed-wa-qareeb-store/pkg/kafka"
)

func newBasketService(store *flakyStore, catalog *mockCatalog) *BasketService {
	return NewBasketService(store, catalog, nil, newTestLogger())
}

func candidate(qty int) domain.Candidate {
	return domain.Candidate{ProductID: "p1", Size: "M", Name: "Shirt", Price: 2000, MaxStock: 3, Quantity: qty}
}

// ============================================================================
// GetBasket
// ============================================================================

func TestGetBasket_EmptyForNewClient(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))

	view, err := svc.GetBasket(context.Background(), clientA)

	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 0, view.ItemCount)
	assert.Equal(t, int64(0), view.TotalPrice)
}

func TestGetBasket_RequiresClientID(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))

	_, err := svc.GetBasket(context.Background(), "")

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestGetBasket_StorageDownIsUnavailable(t *testing.T) {
	store := newFlakyStore()
	store.getErr = errStorageDown
	svc := newBasketService(store, new(mockCatalog))

	_, err := svc.GetBasket(context.Background(), clientA)

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
	assert.Equal(t, 503, apperrors.HTTPStatus(err))
}

// ============================================================================
// Mutations
// ============================================================================

func TestAddItem_PersistsAcrossCalls(t *testing.T) {
	store := newFlakyStore()
	svc := newBasketService(store, new(mockCatalog))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, clientA, candidate(2))
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, clientA, candidate(5))
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, int64(6000), view.TotalPrice)
	assert.Equal(t, "60.00", view.TotalDisplay)

	again, err := svc.GetBasket(ctx, clientA)
	require.NoError(t, err)
	assert.Equal(t, view.Lines, again.Lines)
}

func TestMutations_AreIsolatedPerClient(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, clientA, candidate(1))
	require.NoError(t, err)

	other, err := svc.GetBasket(ctx, "a3a1f5a8-0c0e-4d55-8f0e-1e5b6b2f0c22")
	require.NoError(t, err)
	assert.Empty(t, other.Lines)
}

func TestUpdateAndRemove(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, clientA, candidate(1))
	require.NoError(t, err)

	view, err := svc.UpdateItemQuantity(ctx, clientA, "p1_M", 10)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Lines[0].Quantity)

	view, err = svc.UpdateItemQuantity(ctx, clientA, "p1_M", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Lines[0].Quantity)

	view, err = svc.RemoveItem(ctx, clientA, "unknown")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)

	view, err = svc.RemoveItem(ctx, clientA, "p1_M")
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestClearBasket(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))
	ctx := context.Background()

	_, err := svc.AddItem(ctx, clientA, candidate(2))
	require.NoError(t, err)

	view, err := svc.ClearBasket(ctx, clientA)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)

	again, err := svc.GetBasket(ctx, clientA)
	require.NoError(t, err)
	assert.Empty(t, again.Lines)
}

func TestMutation_PersistFailureIsUnavailable(t *testing.T) {
	store := newFlakyStore()
	store.setErr = errStorageDown
	svc := newBasketService(store, new(mockCatalog))

	view, err := svc.AddItem(context.Background(), clientA, candidate(1))

	assert.Nil(t, view)
	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

func TestMutation_MalformedStateStartsEmpty(t *testing.T) {
	store := newFlakyStore()
	require.NoError(t, store.Set(context.Background(), basketKey(clientA), []byte(`{"oops":`)))
	svc := newBasketService(store, new(mockCatalog))

	view, err := svc.AddItem(context.Background(), clientA, candidate(1))

	require.NoError(t, err)
	assert.Len(t, view.Lines, 1)
}

func TestMutation_ConcurrentAddsAreSerialized(t *testing.T) {
	svc := newBasketService(newFlakyStore(), new(mockCatalog))
	ctx := context.Background()
	c := candidate(1)
	c.MaxStock = 1000

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, clientA, c)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.GetBasket(ctx, clientA)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 50, view.Lines[0].Quantity)
}

// ============================================================================
// AddProduct
// ============================================================================

func TestAddProduct_ResolvesFromCatalog(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "p1").Return(shirtProduct(), nil)
	svc := newBasketService(newFlakyStore(), catalog)

	view, err := svc.AddProduct(context.Background(), clientA, "p1", "M", 5)

	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	line := view.Lines[0]
	assert.Equal(t, "p1_M", line.UniqueID)
	assert.Equal(t, int64(2000), line.Price)
	assert.Equal(t, 3, line.MaxStock)
	assert.Equal(t, 3, line.Quantity)
	require.NotNil(t, line.ImageURL)
	assert.Equal(t, "shirt-front.jpg", *line.ImageURL)
	catalog.AssertExpectations(t)
}

func TestAddProduct_UnknownProduct(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "nope").Return(nil, apperrors.NotFound("product", "nope"))
	svc := newBasketService(newFlakyStore(), catalog)

	_, err := svc.AddProduct(context.Background(), clientA, "nope", "M", 1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddProduct_OutOfStockSize(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "p1").Return(shirtProduct(), nil)
	svc := newBasketService(newFlakyStore(), catalog)

	for _, size := range []string{"XL", "XXS"} {
		_, err := svc.AddProduct(context.Background(), clientA, "p1", size, 1)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr), "size %s", size)
		assert.Equal(t, "OUT_OF_STOCK", appErr.Code)
		assert.Equal(t, 400, appErr.Status)
	}
}

func TestAddProduct_CatalogDown(t *testing.T) {
	catalog := new(mockCatalog)
	catalog.On("GetProduct", mock.Anything, "p1").Return(nil, fmt.Errorf("query products: %w", errStorageDown))
	svc := newBasketService(newFlakyStore(), catalog)

	_, err := svc.AddProduct(context.Background(), clientA, "p1", "M", 1)

	assert.ErrorIs(t, err, apperrors.ErrServiceUnavail)
}

// ============================================================================
// Events
// ============================================================================

type recordingPublisher struct {
	mu     sync.Mutex
	events []*pkgkafka.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, e *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func TestMutations_PublishEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewBasketService(newFlakyStore(), new(mockCatalog), event.NewProducer(pub, newTestLogger()), newTestLogger())
	ctx := context.Background()

	_, err := svc.AddItem(ctx, clientA, candidate(1))
	require.NoError(t, err)
	_, err = svc.ClearBasket(ctx, clientA)
	require.NoError(t, err)

	require.Len(t, pub.events, 2)
	assert.Equal(t, event.EventBasketUpdated, pub.events[0].EventType)
	assert.Equal(t, event.EventBasketCleared, pub.events[1].EventType)
	assert.Equal(t, clientA, pub.events[0].AggregateID)
}

func TestMutations_NoEventWhenPersistFails(t *testing.T) {
	pub := &recordingPublisher{}
	store := newFlakyStore()
	store.setErr = errStorageDown
	svc := NewBasketService(store, new(mockCatalog), event.NewProducer(pub, newTestLogger()), newTestLogger())

	_, err := svc.AddItem(context.Background(), clientA, candidate(1))

	require.Error(t, err)
	assert.Empty(t, pub.events)
}
