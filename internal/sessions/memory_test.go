package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTripIsolatesCopies(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	sess.Form.ClientName = "Juan"
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan", got.Form.ClientName)

	got.Form.ClientName = "Pedro"
	again, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Juan", again.Form.ClientName)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, err := store.Create(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreLock(t *testing.T) {
	store := NewMemoryStore(0)
	unlock, err := store.Lock(context.Background(), "s1")
	require.NoError(t, err)

	_, err = store.Lock(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrBusy)

	unlock()
	unlock()

	again, err := store.Lock(context.Background(), "s1")
	require.NoError(t, err)
	again()
}

func TestStoresSatisfyInterface(t *testing.T) {
	var _ Store = NewMemoryStore(0)
	var _ Store = (*RedisStore)(nil)
	assert.Len(t, NewID(), 32)
	assert.NotEqual(t, NewID(), NewID())
}
