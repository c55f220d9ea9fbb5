package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

func newMockRepository(t *testing.T) (*RecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRecordRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestRecordRepository_FetchRecords(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordsQuery)).WillReturnRows(
		sqlmock.NewRows([]string{"row_no", "doc"}).
			AddRow(0, `{"id":"1","name":"Alice","title":"Manager"}`).
			AddRow(1, `{"id":2,"name":"Bob","lineManager":"Alice","Joining Date":45000}`),
	)

	records, err := repo.FetchRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "Alice", records[0]["name"])
	require.Equal(t, json.Number("2"), records[1]["id"])
	require.Equal(t, json.Number("45000"), records[1]["Joining Date"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_FetchRecordsBadDocument(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordsQuery)).WillReturnRows(
		sqlmock.NewRows([]string{"row_no", "doc"}).AddRow(7, `{not json`),
	)

	_, err := repo.FetchRecords(context.Background())
	require.ErrorContains(t, err, "failed to decode employee record 7")
}

func TestRecordRepository_FetchRecordsQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecordsQuery)).WillReturnError(errors.New("relation does not exist"))

	_, err := repo.FetchRecords(context.Background())
	require.ErrorContains(t, err, "failed to query employee records")
	require.ErrorContains(t, err, "relation does not exist")
}

func TestRecordRepository_ImportRecordsReplacesSnapshot(t *testing.T) {
	repo, mock := newMockRepository(t)
	records := []domain.RawRecord{
		{"id": "1", "name": "Alice"},
		{"id": "2", "lineManager": "Alice"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteRecordsQuery)).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta(insertRecordQuery)).
		WithArgs(0, `{"id":"1","name":"Alice"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(insertRecordQuery)).
		WithArgs(1, `{"id":"2","lineManager":"Alice"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := repo.ImportRecords(context.Background(), records)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ImportRecordsRollsBack(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(deleteRecordsQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(insertRecordQuery)).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.ImportRecords(context.Background(), []domain.RawRecord{{"id": "1"}})
	require.ErrorContains(t, err, "failed to insert employee record 0")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CountAndSchema(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(regexp.QuoteMeta(createRecordsTableQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(countRecordsQuery)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
