package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/basket"
	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	pkgkafka "github.com/omar3814/baeed-wa-qareeb-store/pkg/kafka"
	"github.com/omar3814/baeed-wa-qareeb-store/pkg/logger"
)

// TopicBasket carries every basket event, keyed by client ID.
const TopicBasket = "storefront.basket"

// Event types.
const (
	EventBasketUpdated = "storefront.basket.updated"
	EventBasketCleared = "storefront.basket.cleared"
)

const (
	aggregateTypeBasket = "basket"
	sourceStorefront    = "storefront"
)

// BasketUpdatedData is the payload for a basket.updated event.
type BasketUpdatedData struct {
	ClientID   string              `json:"client_id"`
	Items      []domain.BasketLine `json:"items"`
	ItemCount  int                 `json:"item_count"`
	TotalPrice int64               `json:"total_price"`
}

// BasketClearedData is the payload for a basket.cleared event.
type BasketClearedData struct {
	ClientID string `json:"client_id"`
}

// Publisher publishes event envelopes. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes basket domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new basket event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// Observer returns a basket observer publishing the state of clientID's
// basket after every commit: basket.cleared when it is empty and
// basket.updated otherwise. Publish failures are logged and dropped.
func (p *Producer) Observer(clientID string) basket.Observer {
	return func(ctx context.Context, lines []domain.BasketLine) {
		var err error
		if len(lines) == 0 {
			err = p.PublishBasketCleared(ctx, clientID)
		} else {
			err = p.PublishBasketUpdated(ctx, clientID, lines)
		}
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to publish basket event",
				slog.String("client_id", clientID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// PublishBasketUpdated publishes a basket.updated event.
func (p *Producer) PublishBasketUpdated(ctx context.Context, clientID string, lines []domain.BasketLine) error {
	data := BasketUpdatedData{
		ClientID:   clientID,
		Items:      lines,
		ItemCount:  domain.TotalItemCount(lines),
		TotalPrice: domain.TotalPrice(lines),
	}
	return p.publish(ctx, EventBasketUpdated, clientID, data)
}

// PublishBasketCleared publishes a basket.cleared event.
func (p *Producer) PublishBasketCleared(ctx context.Context, clientID string) error {
	return p.publish(ctx, EventBasketCleared, clientID, BasketClearedData{ClientID: clientID})
}

func (p *Producer) publish(ctx context.Context, eventType, clientID string, data any) error {
	evt, err := pkgkafka.NewEvent(sourceStorefront, eventType,
		pkgkafka.Aggregate{Type: aggregateTypeBasket, ID: clientID}, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("user_id", logger.UserIDFromContext(ctx)),
	)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}

	if err := p.publisher.Publish(ctx, TopicBasket, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
