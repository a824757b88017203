package intent

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	saved := State{
		Name: StateAwaitingPhoneDigits,
		Context: map[string]any{
			"recipient_name":     "anuj",
			"amount":             250.0,
			"preferred_language": "hi",
		},
	}
	require.NoError(t, store.Save(ctx, 1, saved))

	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateAwaitingPhoneDigits, got.Name)
	assert.Equal(t, "anuj", got.Context["recipient_name"])
	assert.Equal(t, 250.0, got.Context["amount"])
	assert.Equal(t, "hi", got.Language())
}

func TestRedisStoreSaveOverwrites(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 1, State{Name: StateAwaitingPhoneResponse, Context: map[string]any{"amount": 100.0}}))
	require.NoError(t, store.Save(ctx, 1, State{Name: StateConfirmingPhone, Context: map[string]any{"phone": "9686270688"}}))

	got, ok, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StateConfirmingPhone, got.Name)
	assert.Nil(t, got.Context["amount"])
}

func TestRedisStoreClear(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 7, State{Name: StateActive}))
	require.NoError(t, store.Clear(ctx, 7))

	_, ok, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatesArePerUser(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 1, State{Name: StateConfirmingPhone}))
	require.NoError(t, store.Save(ctx, 2, State{Name: StateActive}))

	got, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmingPhone, got.Name)

	got, _, err = store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StateActive, got.Name)
}
