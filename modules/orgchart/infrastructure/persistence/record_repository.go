package persistence

import (
	"bytes"
	"context"
	"encoding/json"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Luannt1005/Orgchart-Mil-firebase-sub000/modules/orgchart/domain"
)

const (
	createRecordsTableQuery = `CREATE TABLE IF NOT EXISTS orgchart_employee_records (
		row_no     integer PRIMARY KEY,
		doc        jsonb NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`
	selectRecordsQuery = `SELECT row_no, doc::text AS doc FROM orgchart_employee_records ORDER BY row_no`
	countRecordsQuery  = `SELECT count(*) FROM orgchart_employee_records`
	deleteRecordsQuery = `DELETE FROM orgchart_employee_records`
	insertRecordQuery  = `INSERT INTO orgchart_employee_records (row_no, doc) VALUES ($1, $2::jsonb)`
)

type recordRow struct {
	RowNo int    `db:"row_no"`
	Doc   string `db:"doc"`
}

// RecordRepository keeps the employee record snapshot as one JSON document
// per source row.
type RecordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// OpenRecordRepository connects through the pgx database/sql driver.
func OpenRecordRepository(ctx context.Context, dsn string) (*RecordRepository, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to record store")
	}
	return NewRecordRepository(db), nil
}

func (r *RecordRepository) Close() error { return r.db.Close() }

func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRecordsTableQuery); err != nil {
		return errors.Wrap(err, "failed to create records table")
	}
	return nil
}

func (r *RecordRepository) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, selectRecordsQuery); err != nil {
		return nil, errors.Wrap(err, "failed to query employee records")
	}
	out := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord([]byte(row.Doc))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode employee record %d", row.RowNo)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *RecordRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, countRecordsQuery); err != nil {
		return 0, errors.Wrap(err, "failed to count employee records")
	}
	return n, nil
}

// ImportRecords replaces the whole snapshot in one transaction.
func (r *RecordRepository) ImportRecords(ctx context.Context, records []domain.RawRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteRecordsQuery); err != nil {
		return 0, errors.Wrap(err, "failed to clear employee records")
	}
	for i, rec := range records {
		doc, err := json.Marshal(rec)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to encode employee record %d", i)
		}
		if _, err := tx.ExecContext(ctx, insertRecordQuery, i, string(doc)); err != nil {
			return 0, errors.Wrapf(err, "failed to insert employee record %d", i)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit employee records")
	}
	return len(records), nil
}

// decodeRecord keeps numbers as json.Number so ids and date serials survive
// without float formatting.
func decodeRecord(b []byte) (domain.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var rec domain.RawRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = domain.RawRecord{}
	}
	return rec, nil
}
