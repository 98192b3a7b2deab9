package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/oxbridge-lms/internal/kv"
	"github.com/iliyamo/oxbridge-lms/internal/model"
)

func newLocal(t *testing.T) *kv.Local {
	t.Helper()
	return kv.NewLocal(kv.NewMemoryStore(), "browser-1")
}

func TestUserRepo_ListEmptyWhenAbsent(t *testing.T) {
	users, err := NewUserRepo(newLocal(t)).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NotNil(t, users)
}

func TestUserRepo_RegisterThenAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newLocal(t))
	ada := model.User{Name: "Ada", Email: "ada@x.com", Password: "secret1", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Upsert(ctx, ada))

	got, err := repo.Authenticate(ctx, "ada@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@x.com", got.Email)

	_, err = repo.Authenticate(ctx, "ada@x.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = repo.Authenticate(ctx, "nobody@x.com", "x")
	assert.ErrorIs(t, err, ErrNoSuchAccount)
}

func TestUserRepo_UpsertReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newLocal(t))
	require.NoError(t, repo.Upsert(ctx, model.User{Name: "Ada", Email: "ada@x.com", Password: "secret1"}))
	require.NoError(t, repo.Upsert(ctx, model.User{Name: "Bob", Email: "bob@x.com", Password: "hunter22"}))
	require.NoError(t, repo.Upsert(ctx, model.User{Name: "Ada Lovelace", Email: "ada@x.com", Password: "newpass"}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Ada Lovelace", users[0].Name)
	assert.Equal(t, "ada@x.com", users[0].Email)
	assert.Equal(t, "newpass", users[0].Password)
	assert.Equal(t, "bob@x.com", users[1].Email)
}

func TestUserRepo_FindByEmailIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(newLocal(t))
	require.NoError(t, repo.Upsert(ctx, model.User{Name: "Ada", Email: "ada@x.com", Password: "secret1"}))

	_, ok, err := repo.FindByEmail(ctx, "ADA@x.com")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepo_FirstDuplicateWins(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	require.NoError(t, local.Set(ctx, KeyRegisteredUsers,
		`[{"name":"First","email":"dup@x.com","password":"aaaaaa"},{"name":"Second","email":"dup@x.com","password":"bbbbbb"}]`))

	u, ok, err := NewUserRepo(local).FindByEmail(ctx, "dup@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "First", u.Name)
}

func TestUserRepo_CorruptList(t *testing.T) {
	ctx := context.Background()
	local := newLocal(t)
	repo := NewUserRepo(local)

	require.NoError(t, local.Set(ctx, KeyRegisteredUsers, "{not json"))
	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	require.NoError(t, local.Set(ctx, KeyRegisteredUsers, `[{"name":"x"}]`))
	_, err = repo.Authenticate(ctx, "x@y.z", "123456")
	assert.ErrorIs(t, err, ErrCorruptRecord)

	err = repo.Upsert(ctx, model.User{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrCorruptRecord)
}
