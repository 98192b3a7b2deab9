package kv

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, d Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLStore(db, d), mock
}

func TestSQLStore_MySQLUpsert(t *testing.T) {
	s, mock := newMockStore(t, MySQL)
	mock.ExpectExec(regexp.QuoteMeta(MySQL.Upsert)).
		WithArgs("b1", "registeredUsers", "[]").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "b1", "registeredUsers", "[]"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresGetMissing(t *testing.T) {
	s, mock := newMockStore(t, Postgres)
	mock.ExpectQuery(regexp.QuoteMeta(Postgres.Get)).
		WithArgs("b1", "session").
		WillReturnRows(sqlmock.NewRows([]string{"v"}))

	_, err := s.Get(context.Background(), "b1", "session")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_GetWrapsDriverError(t *testing.T) {
	s, mock := newMockStore(t, MySQL)
	mock.ExpectQuery(regexp.QuoteMeta(MySQL.Get)).
		WithArgs("b1", "session").
		WillReturnError(errors.New("db down"))

	_, err := s.Get(context.Background(), "b1", "session")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "db down")
}

func TestSQLStore_DeleteRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(MySQL.Delete)).
		WithArgs("b1", "session").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(MySQL.Delete)).
		WithArgs("b1", "sessionId").
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err := s.Delete(context.Background(), "b1", "session", "sessionId")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_DeleteCommits(t *testing.T) {
	s, mock := newMockStore(t, Postgres)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(Postgres.Delete)).
		WithArgs("b1", "session").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "b1", "session"))
	require.NoError(t, mock.ExpectationsWereMet())
}
