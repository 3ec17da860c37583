package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/etl/internal/core"
)

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return NewSQLStore(db, core.DialectSQLite), mock
}

func TestSQLStore_ExecBatchCommit(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	const stmt = `INSERT INTO "people" VALUES (?, ?)`
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(stmt)
	prep.ExpectExec().WithArgs(int64(1), "ann").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(int64(2), nil).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()
	mock.ExpectClose()

	err := s.ExecBatch(ctx, stmt, [][]core.Value{
		{core.Int(1), core.Text("ann")},
		{core.Int(2), core.Null()},
	})
	require.NoError(t, err)
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Close())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CloseRollsBackUncommitted(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "t" ("a" INTEGER)`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	mock.ExpectClose()

	require.NoError(t, s.Exec(ctx, `CREATE TABLE IF NOT EXISTS "t" ("a" INTEGER)`))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ExecBatchErrorNamesRow(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	const stmt = `INSERT INTO "t" VALUES (?)`
	mock.ExpectBegin()
	prep := mock.ExpectPrepare(stmt)
	prep.ExpectExec().WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("b").WillReturnError(assert.AnError)
	mock.ExpectRollback()
	mock.ExpectClose()

	err := s.ExecBatch(ctx, stmt, [][]core.Value{{core.Text("a")}, {core.Text("b")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "row 2")

	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_QueryConvertsValues(t *testing.T) {
	s, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT * FROM "t"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "score", "name", "note"}).
			AddRow(int64(1), 1.5, "ann", nil),
	)
	mock.ExpectClose()

	rows, err := s.Query(ctx, `SELECT * FROM "t"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "score", "name", "note"}, rows.Columns())

	require.True(t, rows.Next())
	values, err := rows.Values()
	require.NoError(t, err)
	assert.Equal(t, []core.Value{core.Int(1), core.Real(1.5), core.Text("ann"), core.Null()}, values)
	assert.False(t, rows.Next())
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())

	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT nope`).WillReturnError(assert.AnError)
	mock.ExpectClose()

	_, err := s.Query(context.Background(), `SELECT nope`)
	assert.ErrorIs(t, err, assert.AnError)

	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_CommitWithoutTransaction(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectClose()

	assert.NoError(t, s.Commit(context.Background()))
	require.NoError(t, s.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ClosedRejectsWrites(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectClose()
	require.NoError(t, s.Close())

	err := s.Exec(context.Background(), `DELETE FROM "t"`)
	assert.ErrorContains(t, err, "closed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSQLite_CommitPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "etl.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, core.DialectSQLite, s.Dialect())

	require.NoError(t, s.Exec(ctx, `CREATE TABLE "t" ("id" INTEGER, "name" TEXT)`))
	require.NoError(t, s.ExecBatch(ctx, `INSERT INTO "t" VALUES (?, ?)`, [][]core.Value{
		{core.Int(1), core.Text("ann")},
		{core.Int(2), core.Text("bob")},
	}))

	// Reads see uncommitted inserts through the open transaction.
	assert.Equal(t, 2, countRows(t, s, "t"))
	require.NoError(t, s.Commit(ctx))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 2, countRows(t, s, "t"))
}

func TestOpenSQLite_CloseDiscardsUncommitted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "etl.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Exec(ctx, `CREATE TABLE "t" ("id" INTEGER)`))
	require.NoError(t, s.Commit(ctx))

	require.NoError(t, s.ExecBatch(ctx, `INSERT INTO "t" VALUES (?)`, [][]core.Value{{core.Int(1)}}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, countRows(t, s, "t"))
}

func countRows(t *testing.T, s core.Store, table string) int {
	t.Helper()
	rows, err := s.Query(context.Background(), `SELECT COUNT(*) FROM "`+table+`"`)
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	values, err := rows.Values()
	require.NoError(t, err)
	n, ok := values[0].Int64()
	require.True(t, ok)
	return int(n)
}
