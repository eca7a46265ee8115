package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/maternity-app/session"
)

var _ session.Store = (*SessionStore)(nil)

func setupStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewSessionStore(client), mr
}

func TestNewClientConnectionFailure(t *testing.T) {
	_, err := NewClient(context.Background(), "localhost:1")
	assert.Error(t, err)
}

func TestSessionStoreLifecycle(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	ok, err := store.Active(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Register(ctx, "abc", time.Hour))
	ok, err = store.Active(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("session:abc"))

	require.NoError(t, store.Revoke(ctx, "abc"))
	ok, err = store.Active(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionStoreExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Register(ctx, "short", time.Minute))
	mr.FastForward(2 * time.Minute)

	ok, err := store.Active(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionManagerWithRedis(t *testing.T) {
	store, _ := setupStore(t)
	m := session.NewManager("secret", time.Hour, false, store)
	ctx := context.Background()

	s := &session.Session{UserID: 3, Email: "medico@hospital.test", Roles: []string{"medico"}}
	token, err := m.Encode(s)
	require.NoError(t, err)
	require.NoError(t, store.Register(ctx, s.SessionID, time.Hour))

	got, err := m.Decode(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), got.UserID)

	require.NoError(t, store.Revoke(ctx, s.SessionID))
	_, err = m.Decode(ctx, token)
	assert.ErrorIs(t, err, session.ErrInvalidSession)
}
