package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// IdentityKey Tests
// ============================================================================

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "p1_M", IdentityKey("p1", "M"))
}

func TestIdentityKey_OrderSensitive(t *testing.T) {
	assert.NotEqual(t, IdentityKey("a", "b"), IdentityKey("b", "a"))
}

func TestIdentityKey_Deterministic(t *testing.T) {
	assert.Equal(t, IdentityKey("p9", "XL"), IdentityKey("p9", "XL"))
}

// ============================================================================
// Totals Tests
// ============================================================================

func TestTotalItemCount(t *testing.T) {
	lines := []BasketLine{{Quantity: 2}, {Quantity: 3}}
	assert.Equal(t, 5, TotalItemCount(lines))
}

func TestTotalItemCount_Empty(t *testing.T) {
	assert.Equal(t, 0, TotalItemCount(nil))
}

func TestTotalPrice(t *testing.T) {
	lines := []BasketLine{
		{Price: 2000, Quantity: 3},
		{Price: 550, Quantity: 2},
	}
	// 6000 + 1100
	assert.Equal(t, int64(7100), TotalPrice(lines))
}

func TestTotalPrice_Empty(t *testing.T) {
	assert.Equal(t, int64(0), TotalPrice([]BasketLine{}))
}

func TestLineTotal_SaturatesOnOverflow(t *testing.T) {
	l := BasketLine{Price: math.MaxInt64, Quantity: 2}
	assert.Equal(t, int64(math.MaxInt64), l.LineTotal())
}

func TestLineTotal_NonPositiveOperands(t *testing.T) {
	assert.Equal(t, int64(0), BasketLine{Price: -5, Quantity: 2}.LineTotal())
	assert.Equal(t, int64(0), BasketLine{Price: 500, Quantity: 0}.LineTotal())
}

func TestTotalPrice_SaturatesOnOverflow(t *testing.T) {
	lines := []BasketLine{
		{Price: math.MaxInt64 / 2, Quantity: 1},
		{Price: math.MaxInt64 / 2, Quantity: 1},
		{Price: 10, Quantity: 1},
	}
	assert.Equal(t, int64(math.MaxInt64), TotalPrice(lines))
}

func TestNewBasketView(t *testing.T) {
	v := NewBasketView([]BasketLine{{Price: 2000, Quantity: 3}})
	assert.Equal(t, 3, v.ItemCount)
	assert.Equal(t, int64(6000), v.TotalPrice)
	assert.Equal(t, "60.00", v.TotalDisplay)
}

func TestNewBasketView_NilLinesEncodeAsEmptyArray(t *testing.T) {
	raw, err := json.Marshal(NewBasketView(nil))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lines":[]`)
}

// ============================================================================
// Candidate Tests
// ============================================================================

func TestCandidate_RequestedQuantityDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1, Candidate{}.RequestedQuantity())
	assert.Equal(t, 1, Candidate{Quantity: -4}.RequestedQuantity())
	assert.Equal(t, 7, Candidate{Quantity: 7}.RequestedQuantity())
}

// ============================================================================
// Persisted layout
// ============================================================================

func TestBasketLine_JSONKeys(t *testing.T) {
	img := "https://cdn.example.com/p1.jpg"
	line := BasketLine{
		ProductID: "p1", Name: "Shirt", Size: "M", Quantity: 2,
		Price: 2000, ImageURL: &img, UniqueID: "p1_M", MaxStock: 3,
	}

	raw, err := json.Marshal(line)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, k := range []string{"productId", "name", "size", "quantity", "price", "imageUrl", "uniqueId", "maxStock"} {
		assert.Contains(t, fields, k)
	}
	assert.Len(t, fields, 8)
}

func TestBasketLine_ImageURLOmittedWhenAbsent(t *testing.T) {
	raw, err := json.Marshal(BasketLine{ProductID: "p1"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "imageUrl")
}

func TestBasketLine_RoundTrip(t *testing.T) {
	img := "https://cdn.example.com/a.png"
	in := []BasketLine{
		{ProductID: "p1", Name: "Shirt", Size: "M", Quantity: 3, Price: 2000, UniqueID: "p1_M", MaxStock: 3},
		{ProductID: "p2", Name: "Cap", Size: "One", Quantity: 1, Price: 999, ImageURL: &img, UniqueID: "p2_One", MaxStock: 10},
	}

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out []BasketLine
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}
