// Package basket holds the per-client basket state machine. A Manager is
// synchronous and unlocked: callers that share one across goroutines must
// serialize access themselves.
package basket

import (
	"context"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
)

// Observer receives the complete basket after every commit. The slice is a
// private copy.
type Observer func(ctx context.Context, lines []domain.BasketLine)

// Manager owns an ordered list of basket lines and enforces the per-line
// stock ceiling.
type Manager struct {
	lines     []domain.BasketLine
	observers []Observer
}

// New creates a manager holding lines, in order.
func New(lines ...domain.BasketLine) *Manager {
	return &Manager{lines: cloneLines(lines)}
}

// Subscribe registers o. Observers run in subscription order on every commit;
// the current state is not replayed.
func (m *Manager) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Lines returns a copy of the current lines.
func (m *Manager) Lines() []domain.BasketLine {
	return cloneLines(m.lines)
}

// Find returns the line with the given identity key.
func (m *Manager) Find(key string) (domain.BasketLine, bool) {
	if i := m.index(key); i >= 0 {
		return m.lines[i], true
	}
	return domain.BasketLine{}, false
}

// AddItem merges c into the basket. An existing line keeps its cached name,
// price, image and ceiling and only grows in quantity, capped at its ceiling.
// A new line gets a ceiling of at least 1 and is appended.
func (m *Manager) AddItem(ctx context.Context, c domain.Candidate) {
	requested := c.RequestedQuantity()
	key := domain.IdentityKey(c.ProductID, c.Size)

	if i := m.index(key); i >= 0 {
		line := &m.lines[i]
		// Compare against the headroom so the sum never overflows.
		if requested >= line.MaxStock-line.Quantity {
			line.Quantity = line.MaxStock
		} else {
			line.Quantity += requested
		}
	} else {
		ceiling := max(1, c.MaxStock)
		m.lines = append(m.lines, domain.BasketLine{
			ProductID: c.ProductID,
			Name:      c.Name,
			Size:      c.Size,
			Quantity:  min(ceiling, requested),
			Price:     c.Price,
			ImageURL:  cloneString(c.ImageURL),
			UniqueID:  key,
			MaxStock:  ceiling,
		})
	}

	m.commit(ctx, opAdd)
}

// RemoveItem drops the line with the given identity key. Unknown keys leave
// the basket unchanged but still commit.
func (m *Manager) RemoveItem(ctx context.Context, key string) {
	if i := m.index(key); i >= 0 {
		m.lines = append(m.lines[:i], m.lines[i+1:]...)
	}
	m.commit(ctx, opRemove)
}

// UpdateItemQuantity sets the quantity of the keyed line, clamped to
// [1, MaxStock]. Unknown keys leave the basket unchanged but still commit.
func (m *Manager) UpdateItemQuantity(ctx context.Context, key string, quantity int) {
	if i := m.index(key); i >= 0 {
		line := &m.lines[i]
		line.Quantity = min(max(quantity, 1), line.MaxStock)
	}
	m.commit(ctx, opUpdate)
}

// Clear empties the basket.
func (m *Manager) Clear(ctx context.Context) {
	m.lines = nil
	m.commit(ctx, opClear)
}

func (m *Manager) index(key string) int {
	for i := range m.lines {
		if m.lines[i].UniqueID == key {
			return i
		}
	}
	return -1
}

func (m *Manager) commit(ctx context.Context, op string) {
	mutationsTotal.WithLabelValues(op).Inc()
	for _, o := range m.observers {
		o(ctx, m.Lines())
	}
}

func cloneLines(lines []domain.BasketLine) []domain.BasketLine {
	out := make([]domain.BasketLine, len(lines))
	for i, l := range lines {
		l.ImageURL = cloneString(l.ImageURL)
		out[i] = l
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
