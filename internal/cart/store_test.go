package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return redis.NewFromClient(raw), srv
}

func TestRedisStoreLoadMissingReturnsEmptyCart(t *testing.T) {
	client, _ := newRedis(t)
	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)

	c, err := store.Load(context.Background(), "session-missing")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, "session-missing", c.SessionID)
}

func TestRedisStoreRoundTripAndSlidingTTL(t *testing.T) {
	client, srv := newRedis(t)
	store, err := NewRedisStore(client, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	c := New("session-abc")
	mango := snapshotOf("Mango", 350, 5)
	require.NoError(t, c.AddOrIncrement(mango, 2))
	require.NoError(t, store.Save(ctx, c))

	key := client.CartKey("session-abc")
	assert.Equal(t, time.Hour, srv.TTL(key))

	srv.FastForward(50 * time.Minute)
	loaded, err := store.Load(ctx, "session-abc")
	require.NoError(t, err)
	require.Contains(t, loaded.Items, mango.ProductID)
	assert.Equal(t, 2, loaded.Items[mango.ProductID].Quantity)
	assert.True(t, loaded.Items[mango.ProductID].Unit.Price.Equal(mango.Unit.Price))
	assert.Equal(t, time.Hour, srv.TTL(key))

	require.NoError(t, store.Delete(ctx, "session-abc"))
	assert.False(t, srv.Exists(key))
}

func TestRedisStoreExpiresIdleCarts(t *testing.T) {
	client, srv := newRedis(t)
	store, err := NewRedisStore(client, time.Minute)
	require.NoError(t, err)
	ctx := context.Background()

	c := New("session-idle")
	require.NoError(t, c.AddOrIncrement(snapshotOf("Honey", 650, 2), 1))
	require.NoError(t, store.Save(ctx, c))

	srv.FastForward(2 * time.Minute)
	loaded, err := store.Load(ctx, "session-idle")
	require.NoError(t, err)
	assert.True(t, loaded.IsEmpty())
}

func TestRedisStoreValidation(t *testing.T) {
	_, err := NewRedisStore(nil, time.Hour)
	require.Error(t, err)

	client, _ := newRedis(t)
	store, err := NewRedisStore(client, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultSessionTTL, store.ttl)
	require.Error(t, store.Save(context.Background(), New("")))
}
