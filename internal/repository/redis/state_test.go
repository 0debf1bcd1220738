package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/omar3814/baeed-wa-qareeb-store/pkg/errors"
)

func newTestStore(t *testing.T, ttl time.Duration) (*StateStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStateStore(client, ttl), mr
}

func TestStateStore_SetGet(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "c1:basket", []byte(`[]`)))

	got, err := store.Get(ctx, "c1:basket")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	mr.CheckGet(t, "storefront:state:c1:basket", `[]`)
	assert.Equal(t, time.Hour, mr.TTL("storefront:state:c1:basket"))
}

func TestStateStore_GetMissing(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "nope")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStateStore_SetRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("1")))
	mr.FastForward(50 * time.Minute)
	require.NoError(t, store.Set(ctx, "k", []byte("2")))
	mr.FastForward(50 * time.Minute)

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
}

func TestStateStore_Expires(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("1")))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestStateStore_Delete(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("1")))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.False(t, mr.Exists("storefront:state:k"))

	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestStateStore_Unavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	mr.Close()

	_, err := store.Get(ctx, "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound)

	assert.Error(t, store.Set(ctx, "k", []byte("1")))
	assert.Error(t, store.Ping(ctx))
}
