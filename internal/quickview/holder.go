// Package quickview holds the product currently shown in a client's quick
// view overlay.
package quickview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// StorageKey is the fixed key the quick view is stored under inside a client
// namespace.
const StorageKey = "quickview"

// Observer receives the current product after every change, nil when cleared.
type Observer func(ctx context.Context, p *domain.Product)

// Store is the key-value storage the holder is persisted to.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Holder keeps at most one product.
type Holder struct {
	current   *domain.Product
	observers []Observer
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Subscribe registers o for subsequent changes.
func (h *Holder) Subscribe(o Observer) {
	h.observers = append(h.observers, o)
}

// Current returns a deep copy of the held product, or nil.
func (h *Holder) Current() *domain.Product {
	if h.current == nil {
		return nil
	}
	p := h.current.Clone()
	return &p
}

// Set replaces the held product with a copy of p. A missing image list
// becomes empty.
func (h *Holder) Set(ctx context.Context, p domain.Product) {
	p = p.Clone()
	p.Normalize()
	h.current = &p
	h.notify(ctx)
}

// Clear drops the held product.
func (h *Holder) Clear(ctx context.Context) {
	h.current = nil
	h.notify(ctx)
}

func (h *Holder) notify(ctx context.Context) {
	for _, o := range h.observers {
		o(ctx, h.Current())
	}
}

// Restore loads the holder from key. Missing or undecodable values give an
// empty holder; storage failures are returned.
func Restore(ctx context.Context, store Store, key string, logger *slog.Logger) (*Holder, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return NewHolder(), nil
		}
		return nil, apperrors.Wrap(err, "restore quick view")
	}

	var p *domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.WarnContext(ctx, "discarding malformed quick view state",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return NewHolder(), nil
	}

	h := NewHolder()
	if p != nil {
		p.Normalize()
		h.current = p
	}
	return h, nil
}

// Persister writes the held product under one key on every change.
type Persister struct {
	store Store
	key   string
	err   error
}

// NewPersister creates a persister writing to key.
func NewPersister(store Store, key string) *Persister {
	return &Persister{store: store, key: key}
}

// Observe implements Observer.
func (p *Persister) Observe(ctx context.Context, product *domain.Product) {
	raw, err := json.Marshal(product)
	if err != nil {
		p.err = fmt.Errorf("encode quick view: %w", err)
		return
	}
	p.err = p.store.Set(ctx, p.key, raw)
}

// Err returns the error of the most recent write, or nil.
func (p *Persister) Err() error {
	return p.err
}
