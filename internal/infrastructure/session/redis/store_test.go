package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/dinelog/internal/core/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, ttl), mr
}

func TestSessionStoreAppendAndGetInOrder(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Append(ctx, domain.SessionMessage{ID: "1", SessionID: "s1", Role: domain.RoleUser, Content: "pizza near me"}))
	require.NoError(t, store.Append(ctx, domain.SessionMessage{ID: "2", SessionID: "s1", Role: domain.RoleAssistant, Content: "structured: 1 places, 1 reviews"}))
	require.NoError(t, store.Append(ctx, domain.SessionMessage{ID: "3", SessionID: "other", Role: domain.RoleUser, Content: "x"}))

	msgs, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)
}

func TestSessionStoreMissingSessionIsEmpty(t *testing.T) {
	store, _ := newTestStore(t, 0)
	msgs, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSessionStoreRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.SessionMessage{ID: "1", SessionID: "s1", Content: "a"}))

	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"s1"))
	mr.FastForward(2 * time.Minute)

	msgs, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSessionStoreClear(t *testing.T) {
	store, mr := newTestStore(t, 0)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, domain.SessionMessage{ID: "1", SessionID: "s1", Content: "a"}))
	require.NoError(t, store.Clear(ctx, "s1"))
	assert.False(t, mr.Exists(keyPrefix+"s1"))
}
