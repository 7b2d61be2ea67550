package session_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/memberportal/core/session"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()

	rec, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec)

	u := member("1")
	require.NoError(t, store.Write(ctx, session.Record{User: u, Token: "tok", IsAuthenticated: true}))
	u.Name = "changed"

	rec, err = store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "A", rec.User.Name)
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("missing file reads as absent", func(t *testing.T) {
		t.Parallel()

		store := session.NewFileStore(filepath.Join(t.TempDir(), "nope", "session.json"))
		rec, err := store.Read(context.Background())
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("round trips a record", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "session.json")
		store := session.NewFileStore(path)

		want := session.Record{
			User:            &session.User{ID: "1", Name: "A", Email: "a@example.org", Role: session.RoleAdmin},
			Token:           "tok123",
			IsAuthenticated: true,
		}
		require.NoError(t, store.Write(ctx, want))

		got, err := store.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, *got)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("uses the documented field names", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "session.json")
		store := session.NewFileStore(path)
		require.NoError(t, store.Write(ctx, session.Record{User: member("1"), Token: "tok", IsAuthenticated: true}))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)

		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		assert.Contains(t, m, "user")
		assert.Contains(t, m, "token")
		assert.Contains(t, m, "isAuthenticated")
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := session.NewFileStore(path).Read(context.Background())
		assert.ErrorIs(t, err, session.ErrMalformedRecord)
	})

	t.Run("unknown role is malformed", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "session.json")
		body := `{"user":{"id":"1","name":"A","role":"superuser"},"token":"t","isAuthenticated":true}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		_, err := session.NewFileStore(path).Read(context.Background())
		assert.ErrorIs(t, err, session.ErrMalformedRecord)
	})

	t.Run("holder hydrates from file", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "session.json")

		first := session.NewHolder(session.NewFileStore(path))
		first.Hydrate(ctx)
		first.Login(ctx, member("1"), "tokABC")

		second := session.NewHolder(session.NewFileStore(path))
		second.Hydrate(ctx)

		st := second.State()
		assert.True(t, st.Hydrated)
		assert.True(t, st.IsAuthenticated)
		assert.Equal(t, "tokABC", st.Token)
	})
}

func TestRole(t *testing.T) {
	t.Parallel()

	assert.True(t, session.RoleMember.Valid())
	assert.True(t, session.RoleAdmin.Valid())
	assert.False(t, session.Role("").Valid())

	var r session.Role
	require.NoError(t, r.UnmarshalText([]byte("admin")))
	assert.Equal(t, session.RoleAdmin, r)
	assert.ErrorIs(t, r.UnmarshalText([]byte("root")), session.ErrInvalidRole)

	assert.True(t, (&session.User{Role: session.RoleAdmin}).IsAdmin())
	assert.False(t, (*session.User)(nil).IsAdmin())
}
