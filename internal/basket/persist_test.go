package basket

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omar3814/baeed-wa-qareeb-store/internal/domain"
	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

// ============================================================================
// In-memory Store
// ============================================================================

type mapStore struct {
	data   map[string][]byte
	getErr error
	setErr error
	writes int
}

func newMapStore() *mapStore {
	return &mapStore{data: map[string][]byte{}}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, apperrors.NotFound("state", key)
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte) error {
	s.writes++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func restoreFailures(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, restoreFailuresTotal.Write(&m))
	return m.GetCounter().GetValue()
}

// ============================================================================
// Restore Tests
// ============================================================================

func TestRestore_MissingKeyIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	m, err := Restore(context.Background(), newMapStore(), "c1:basket", testLogger(&buf))

	require.NoError(t, err)
	assert.Empty(t, m.Lines())
}

func TestRestore_MalformedFailsSoft(t *testing.T) {
	store := newMapStore()
	store.data["c1:basket"] = []byte(`{not json`)
	var buf bytes.Buffer
	before := restoreFailures(t)

	m, err := Restore(context.Background(), store, "c1:basket", testLogger(&buf))

	require.NoError(t, err)
	assert.Empty(t, m.Lines())
	assert.Contains(t, buf.String(), "discarding malformed persisted basket")
	assert.Equal(t, before+1, restoreFailures(t))
}

func TestRestore_InvalidLineFailsSoft(t *testing.T) {
	store := newMapStore()
	store.data["k"] = []byte(`[{"productId":"p1","size":"M","uniqueId":"p1_M","quantity":5,"maxStock":3,"price":1}]`)
	var buf bytes.Buffer

	m, err := Restore(context.Background(), store, "k", testLogger(&buf))

	require.NoError(t, err)
	assert.Empty(t, m.Lines())
	assert.Contains(t, buf.String(), "WARN")
}

func TestRestore_StorageErrorIsReturned(t *testing.T) {
	store := newMapStore()
	store.getErr = errors.New("connection refused")
	var buf bytes.Buffer

	m, err := Restore(context.Background(), store, "k", testLogger(&buf))

	assert.Nil(t, m)
	require.Error(t, err)
	assert.EqualError(t, err, "restore basket: connection refused")
}

func TestRestore_NullValueIsEmpty(t *testing.T) {
	store := newMapStore()
	store.data["k"] = []byte("null")
	var buf bytes.Buffer

	m, err := Restore(context.Background(), store, "k", testLogger(&buf))

	require.NoError(t, err)
	assert.Empty(t, m.Lines())
	assert.Empty(t, buf.String())
}

// ============================================================================
// Persister Tests
// ============================================================================

func TestPersister_WritesAfterEveryCommit(t *testing.T) {
	store := newMapStore()
	var buf bytes.Buffer
	p := NewPersister(store, "c1:basket", testLogger(&buf))

	m := New()
	m.Subscribe(p.Observe)
	ctx := context.Background()

	m.AddItem(ctx, shirt(1))
	m.RemoveItem(ctx, "absent")
	m.UpdateItemQuantity(ctx, "p1_M", 3)

	assert.Equal(t, 3, store.writes)
	require.NoError(t, p.Err())

	lines, err := Decode(store.data["c1:basket"])
	require.NoError(t, err)
	assert.Equal(t, m.Lines(), lines)
}

func TestPersister_ClearWritesEmptyArray(t *testing.T) {
	store := newMapStore()
	var buf bytes.Buffer
	p := NewPersister(store, "k", testLogger(&buf))
	m := New()
	m.Subscribe(p.Observe)

	m.Clear(context.Background())

	assert.Equal(t, "[]", string(store.data["k"]))
}

func TestPersister_RecordsWriteError(t *testing.T) {
	store := newMapStore()
	store.setErr = errors.New("READONLY")
	var buf bytes.Buffer
	p := NewPersister(store, "k", testLogger(&buf))
	m := New()
	m.Subscribe(p.Observe)

	m.AddItem(context.Background(), shirt(1))

	require.Error(t, p.Err())
	assert.Len(t, m.Lines(), 1)
	assert.Contains(t, buf.String(), "failed to persist basket")

	store.setErr = nil
	m.Clear(context.Background())
	assert.NoError(t, p.Err())
}

func TestPersistReloadRoundTrip(t *testing.T) {
	store := newMapStore()
	var buf bytes.Buffer
	logger := testLogger(&buf)
	ctx := context.Background()

	m := New()
	m.Subscribe(NewPersister(store, "k", logger).Observe)
	m.AddItem(ctx, shirt(2))
	img := "cap.png"
	m.AddItem(ctx, domain.Candidate{ProductID: "p2", Size: "One", Name: "Cap", Price: 999, ImageURL: &img, MaxStock: 10, Quantity: 4})

	restored, err := Restore(ctx, store, "k", logger)
	require.NoError(t, err)
	assert.Equal(t, m.Lines(), restored.Lines())
}

// ============================================================================
// Codec Tests
// ============================================================================

func TestDecode_RejectsDuplicates(t *testing.T) {
	raw := []byte(`[
		{"productId":"p1","size":"M","uniqueId":"p1_M","quantity":1,"maxStock":3,"price":1,"name":"a"},
		{"productId":"p1","size":"M","uniqueId":"p1_M","quantity":2,"maxStock":3,"price":1,"name":"a"}
	]`)
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_RejectsMismatchedKey(t *testing.T) {
	raw := []byte(`[{"productId":"p1","size":"M","uniqueId":"M_p1","quantity":1,"maxStock":3,"price":1}]`)
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
