package domain

import "math"

// BasketLine is one product/size entry in a client's basket. The JSON form is
// the persisted layout and must stay stable.
type BasketLine struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     int64   `json:"price"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	UniqueID  string  `json:"uniqueId"`
	MaxStock  int     `json:"maxStock"`
}

// LineTotal returns Price * Quantity in minor units, saturating at
// math.MaxInt64. Non-positive operands yield 0.
func (l BasketLine) LineTotal() int64 {
	if l.Price <= 0 || l.Quantity <= 0 {
		return 0
	}
	if l.Price > math.MaxInt64/int64(l.Quantity) {
		return math.MaxInt64
	}
	return l.Price * int64(l.Quantity)
}

// Candidate describes a line to be added. Quantity <= 0 means "not given"
// and is treated as 1.
type Candidate struct {
	ProductID string
	Size      string
	Name      string
	Price     int64
	ImageURL  *string
	MaxStock  int
	Quantity  int
}

// RequestedQuantity returns the quantity the caller asked for, defaulting to 1.
func (c Candidate) RequestedQuantity() int {
	if c.Quantity <= 0 {
		return 1
	}
	return c.Quantity
}

// IdentityKey derives the identity of a line from its product and size.
// It is order sensitive: IdentityKey("a", "b") != IdentityKey("b", "a").
func IdentityKey(productID, size string) string {
	return productID + "_" + size
}

// TotalItemCount sums the quantities of all lines.
func TotalItemCount(lines []BasketLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums Price * Quantity over all lines, in minor units. The sum
// saturates at math.MaxInt64.
func TotalPrice(lines []BasketLine) int64 {
	var total int64
	for _, l := range lines {
		lt := l.LineTotal()
		if lt > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += lt
	}
	return total
}

// BasketView is the read model returned to API callers.
type BasketView struct {
	Lines        []BasketLine `json:"lines"`
	ItemCount    int          `json:"item_count"`
	TotalPrice   int64        `json:"total_price"`
	TotalDisplay string       `json:"total_display"`
}

// NewBasketView computes the aggregate fields for lines.
func NewBasketView(lines []BasketLine) BasketView {
	if lines == nil {
		lines = []BasketLine{}
	}
	total := TotalPrice(lines)
	return BasketView{
		Lines:        lines,
		ItemCount:    TotalItemCount(lines),
		TotalPrice:   total,
		TotalDisplay: FormatMinorUnits(total),
	}
}
