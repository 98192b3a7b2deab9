package kv

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "b1", "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "b1", "registeredUsers", "[]"))
	require.NoError(t, s.Set(ctx, "b1", "session", `{"isLoggedIn":true}`))
	require.NoError(t, s.Set(ctx, "b2", "session", "other"))

	v, err := s.Get(ctx, "b1", "session")
	require.NoError(t, err)
	assert.Equal(t, `{"isLoggedIn":true}`, v)

	require.NoError(t, s.Set(ctx, "b1", "session", "overwritten"))
	v, err = s.Get(ctx, "b1", "session")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", v)

	require.NoError(t, s.Delete(ctx, "b1", "session", "sessionId"))
	_, err = s.Get(ctx, "b1", "session")
	require.ErrorIs(t, err, ErrNotFound)

	v, err = s.Get(ctx, "b1", "registeredUsers")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = s.Get(ctx, "b2", "session")
	require.NoError(t, err)
	assert.Equal(t, "other", v, "scopes must not leak into each other")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStore(rdb, "test")
	exerciseStore(t, s)

	assert.True(t, mr.Exists("test:b1:registeredUsers"))
	assert.False(t, mr.Exists("test:b1:session"))
}

func TestSQLStore_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLStore(db, SQLite)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()), "migrate must be idempotent")
	exerciseStore(t, s)
}

func TestLocal_GetReportsPresence(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(NewMemoryStore(), "browser")
	assert.Equal(t, "browser", l.Scope())

	_, ok, err := l.Get(ctx, "userCourse")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.Set(ctx, "userCourse", "Biology"))
	v, ok, err := l.Get(ctx, "userCourse")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Biology", v)

	require.NoError(t, l.Remove(ctx))
	require.NoError(t, l.Remove(ctx, "userCourse"))
	_, ok, err = l.Get(ctx, "userCourse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDialectFor(t *testing.T) {
	for _, name := range []string{"mysql", "postgres", "sqlite3"} {
		d, err := DialectFor(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name)
	}
	_, err := DialectFor("oracle")
	assert.Error(t, err)
}
