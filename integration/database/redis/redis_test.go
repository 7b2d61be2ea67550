package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberportal/core/session"
	"github.com/dmitrymomot/memberportal/integration/database/redis"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestConnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client, err := redis.Connect(ctx, redis.Config{
			ConnectionURL: "redis://" + mr.Addr() + "/0",
			RetryAttempts: 1,
		})
		require.NoError(t, err)
		defer client.Close()

		require.NoError(t, redis.Healthcheck(client)(ctx))
	})

	t.Run("empty_url", func(t *testing.T) {
		_, err := redis.Connect(ctx, redis.Config{})
		require.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("bad_scheme", func(t *testing.T) {
		_, err := redis.Connect(ctx, redis.Config{ConnectionURL: "http://" + mr.Addr()})
		require.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("not_ready", func(t *testing.T) {
		_, err := redis.Connect(ctx, redis.Config{
			ConnectionURL: "redis://127.0.0.1:1/0",
			RetryAttempts: 2,
			RetryInterval: 10 * time.Millisecond,
		})
		require.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

func TestHealthcheck_Fails(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	mr.Close()

	err := redis.Healthcheck(client)(context.Background())
	require.ErrorIs(t, err, redis.ErrHealthcheckFailed)
}

func TestCredentialStore_RoundTrip(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := redis.NewCredentialStore(client, redis.WithKeyPrefix("test"), redis.WithTTL(time.Hour))
	ctx := context.Background()

	rec, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)

	want := session.Record{
		User:            &session.User{ID: "u1", Name: "Ann", Role: session.RoleAdmin},
		Token:           "tok",
		IsAuthenticated: true,
	}
	require.NoError(t, store.Save(ctx, "sid1", want))
	assert.True(t, mr.Exists("test:session:sid1"))
	assert.Equal(t, time.Hour, mr.TTL("test:session:sid1"))

	mr.FastForward(30 * time.Minute)
	got, err := store.Load(ctx, "sid1")
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, time.Hour, mr.TTL("test:session:sid1"), "load extends the ttl")

	require.NoError(t, store.Remove(ctx, "sid1"))
	require.NoError(t, store.Remove(ctx, "sid1"))
	assert.False(t, mr.Exists("test:session:sid1"))

	ids, err := store.UserSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCredentialStore_Expires(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := redis.NewCredentialStoreFromConfig(client, redis.Config{KeyPrefix: "p", SessionTTL: time.Minute})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "sid", session.Record{
		User: &session.User{ID: "u1", Name: "Ann", Role: session.RoleMember}, Token: "t", IsAuthenticated: true,
	}))
	mr.FastForward(2 * time.Minute)

	rec, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCredentialStore_Malformed(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := redis.NewCredentialStore(client)
	ctx := context.Background()

	require.NoError(t, mr.Set("portal:session:bad", "{not json"))
	_, err := store.Load(ctx, "bad")
	require.ErrorIs(t, err, session.ErrMalformedRecord)

	require.NoError(t, mr.Set("portal:session:role", `{"user":{"id":"1","name":"x","role":"root"},"token":"t","isAuthenticated":true}`))
	_, err = store.Load(ctx, "role")
	require.ErrorIs(t, err, session.ErrMalformedRecord)

	require.NoError(t, store.Remove(ctx, "bad"))
	assert.False(t, mr.Exists("portal:session:bad"))
}

func TestCredentialStore_RemoveUser(t *testing.T) {
	t.Parallel()

	_, client := newTestRedis(t)
	store := redis.NewCredentialStore(client)
	ctx := context.Background()

	ann := &session.User{ID: "ann", Name: "Ann", Role: session.RoleMember}
	bob := &session.User{ID: "bob", Name: "Bob", Role: session.RoleMember}
	for _, sid := range []string{"a1", "a2"} {
		require.NoError(t, store.Save(ctx, sid, session.Record{User: ann, Token: sid, IsAuthenticated: true}))
	}
	require.NoError(t, store.Save(ctx, "b1", session.Record{User: bob, Token: "b1", IsAuthenticated: true}))

	n, err := store.RemoveUser(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, err := store.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	rec, err = store.Load(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, rec)

	n, err = store.RemoveUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCredentialStore_Unavailable(t *testing.T) {
	t.Parallel()

	mr, client := newTestRedis(t)
	store := redis.NewCredentialStore(client)
	mr.Close()

	_, err := store.Load(context.Background(), "sid")
	require.ErrorIs(t, err, redis.ErrRedisUnavailable)
}
