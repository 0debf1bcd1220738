package basket

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
)

// ErrMalformed reports a persisted basket that cannot be decoded into a
// valid line list.
var ErrMalformed = errors.New("malformed persisted basket")

// Encode serializes lines as a JSON array. A nil slice encodes as [].
func Encode(lines []domain.BasketLine) ([]byte, error) {
	if lines == nil {
		lines = []domain.BasketLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("encode basket: %w", err)
	}
	return raw, nil
}

// Decode parses a persisted basket. An empty value or JSON null decodes to
// an empty basket.
func Decode(raw []byte) ([]domain.BasketLine, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var lines []domain.BasketLine
	if err := json.Unmarshal(trimmed, &lines); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if err := checkLine(l); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, i, err)
		}
		if _, dup := seen[l.UniqueID]; dup {
			return nil, fmt.Errorf("%w: duplicate line %q", ErrMalformed, l.UniqueID)
		}
		seen[l.UniqueID] = struct{}{}
	}
	return lines, nil
}

func checkLine(l domain.BasketLine) error {
	switch {
	case l.ProductID == "":
		return errors.New("missing productId")
	case l.UniqueID != domain.IdentityKey(l.ProductID, l.Size):
		return fmt.Errorf("uniqueId %q does not match product and size", l.UniqueID)
	case l.MaxStock < 1:
		return fmt.Errorf("maxStock %d below 1", l.MaxStock)
	case l.Quantity < 1 || l.Quantity > l.MaxStock:
		return fmt.Errorf("quantity %d outside [1, %d]", l.Quantity, l.MaxStock)
	case l.Price < 0:
		return fmt.Errorf("negative price %d", l.Price)
	}
	return nil
}
