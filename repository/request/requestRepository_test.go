package requestrepo

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"librarymanagement/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, Repo) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock, New(db)
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	return tx
}

func TestLockRequestor_MissingUser(t *testing.T) {
	db, mock, r := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	ok, err := r.LockRequestor(context.Background(), tx, 7)
	require.NoError(t, err)
	require.False(t, ok)

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountMonth(t *testing.T) {
	_, mock, r := newMock(t)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(int64(7), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	n, err := r.CountMonth(context.Background(), 7, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRequest_ReturnsID(t *testing.T) {
	db, mock, r := newMock(t)
	tx := beginTx(t, db, mock)

	at := time.Date(2024, 5, 14, 10, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO requests")).
		WithArgs(at, string(model.StatusWaiting), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(99)))
	mock.ExpectCommit()

	id, err := r.InsertRequest(context.Background(), tx, 7, at)
	require.NoError(t, err)
	require.Equal(t, int64(99), id)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusForUpdate(t *testing.T) {
	db, mock, r := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(model.StatusApproved)))

	status, err := r.StatusForUpdate(context.Background(), tx, 5)
	require.NoError(t, err)
	require.Equal(t, model.StatusApproved, status)

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
}

func TestSetApproved(t *testing.T) {
	db, mock, r := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE requests")).
		WithArgs(int64(5), string(model.StatusApproved), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, r.SetApproved(context.Background(), tx, 5, 11))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRestoreAvailability(t *testing.T) {
	db, mock, r := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(regexp.QuoteMeta("SET available = available + 1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, r.RestoreAvailability(context.Background(), tx, 5))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountForUser(t *testing.T) {
	_, mock, r := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM requests WHERE requestor_id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := r.CountForUser(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}
