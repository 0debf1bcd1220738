package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	pkgkafka "github.com/omar3814/baeed-wa-qareeb-store/pkg/kafka"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/logger"
)

// ============================================================================
// Mock Publisher
// ============================================================================

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	return m.Called(ctx, topic, event).Error(0)
}

func lines() []domain.BasketLine {
	return []domain.BasketLine{
		{ProductID: "p1", Size: "M", Name: "Shirt", Quantity: 3, Price: 2000, UniqueID: "p1_M", MaxStock: 3},
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestObserver_PublishesUpdated(t *testing.T) {
	pub := new(mockPublisher)
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicBasket, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	p := NewProducer(pub, slog.Default())
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	ctx = logger.WithUserID(ctx, "user-9")

	p.Observer("client-1")(ctx, lines())

	pub.AssertExpectations(t)
	require.NotNil(t, got)
	assert.Equal(t, EventBasketUpdated, got.EventType)
	assert.Equal(t, "client-1", got.AggregateID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "user-9", got.Metadata["user_id"])

	var data BasketUpdatedData
	require.NoError(t, json.Unmarshal(got.Data, &data))
	assert.Equal(t, 3, data.ItemCount)
	assert.Equal(t, int64(6000), data.TotalPrice)
	assert.Len(t, data.Items, 1)
}

func TestObserver_PublishesClearedWhenEmpty(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, TopicBasket, mock.MatchedBy(func(e *pkgkafka.Event) bool {
		return e.EventType == EventBasketCleared
	})).Return(nil)

	NewProducer(pub, slog.Default()).Observer("client-1")(context.Background(), nil)

	pub.AssertExpectations(t)
}

func TestObserver_AnonymousRequestHasNoMetadata(t *testing.T) {
	pub := new(mockPublisher)
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicBasket, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	NewProducer(pub, slog.Default()).Observer("client-1")(context.Background(), lines())

	require.NotNil(t, got)
	assert.Empty(t, got.CorrelationID)
	assert.Nil(t, got.Metadata)
}

func TestObserver_LogsPublishFailure(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))

	assert.NotPanics(t, func() {
		NewProducer(pub, l).Observer("client-1")(context.Background(), lines())
	})
	assert.Contains(t, buf.String(), "failed to publish basket event")
	assert.Contains(t, buf.String(), "broker down")
}
