package basket

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// StorageKey is the fixed key the basket is stored under inside a client
// namespace.
const StorageKey = "basket"

// Store is the key-value storage a basket is persisted to. Get returns an
// error matching apperrors.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Restore builds a manager from the value stored under key. A missing key
// yields an empty basket. A value that cannot be decoded is logged, counted
// and replaced by an empty basket. Storage failures are returned.
func Restore(ctx context.Context, store Store, key string, logger *slog.Logger) (*Manager, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return New(), nil
		}
		return nil, apperrors.Wrap(err, "restore basket")
	}

	lines, err := Decode(raw)
	if err != nil {
		restoreFailuresTotal.Inc()
		logger.WarnContext(ctx, "discarding malformed persisted basket",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return New(), nil
	}
	return New(lines...), nil
}

// Persister is an Observer that writes the whole basket under one key after
// every commit. Write failures are kept for the caller to inspect with Err,
// since observers cannot fail a mutation.
type Persister struct {
	store  Store
	key    string
	logger *slog.Logger
	err    error
}

// NewPersister creates a persister writing to key.
func NewPersister(store Store, key string, logger *slog.Logger) *Persister {
	return &Persister{store: store, key: key, logger: logger}
}

// Observe implements Observer.
func (p *Persister) Observe(ctx context.Context, lines []domain.BasketLine) {
	raw, err := Encode(lines)
	if err == nil {
		err = p.store.Set(ctx, p.key, raw)
	}
	p.err = err
	if err != nil {
		persistFailuresTotal.Inc()
		p.logger.ErrorContext(ctx, "failed to persist basket",
			slog.String("key", p.key),
			slog.String("error", err.Error()),
		)
	}
}

// Err returns the error of the most recent write, or nil.
func (p *Persister) Err() error {
	return p.err
}
