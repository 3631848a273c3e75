package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/data/sqlutil"
	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// MySQLJobStore stores job records in the sbobine_jobs table of a MySQL database.
// The DSN must enable parseTime so DATETIME columns scan into time.Time.
type MySQLJobStore struct {
	DB *sql.DB
}

// NewMySQLJobStore creates a MySQLJobStore over an open go-sql-driver/mysql *sql.DB.
func NewMySQLJobStore(db *sql.DB) *MySQLJobStore {
	return &MySQLJobStore{DB: db}
}

// Put upserts the record.
func (s *MySQLJobStore) Put(ctx context.Context, rec *model.JobRecord) error {
	b, err := encodeJob(rec)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO sbobine_jobs (job_id, status, progress, record, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			progress = VALUES(progress),
			record = VALUES(record),
			updated_at = VALUES(updated_at)
	`, rec.JobID, string(rec.Status), rec.Progress, string(b), rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	return mapStoreError("put job", err)
}

// Get loads a record by id.
func (s *MySQLJobStore) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	var b []byte
	err := s.DB.QueryRowContext(ctx, `SELECT record FROM sbobine_jobs WHERE job_id = ?`, jobID).Scan(&b)
	if err != nil {
		return nil, mapStoreError("get job", err)
	}
	return decodeJob(b)
}

// DeleteTerminalBefore deletes up to BatchSize terminal records older than the cutoff.
func (s *MySQLJobStore) DeleteTerminalBefore(ctx context.Context, params core.DeleteTerminalParams) (int64, error) {
	if !params.Status.IsTerminal() {
		return 0, errNonTerminalStatus(params.Status)
	}

	var deleted int64
	err := sqlutil.WithTx(ctx, s.DB, sqlutil.TxConfig{
		Fn: func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM sbobine_jobs
				WHERE status = ? AND updated_at < ?
				ORDER BY updated_at
				LIMIT ?
			`, string(params.Status), params.Before.UTC(), params.BatchSize)
			if err != nil {
				return mapStoreError("delete terminal jobs", err)
			}
			deleted, err = sqlutil.RowsAffected(res)
			return err
		},
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Health pings the database.
func (s *MySQLJobStore) Health(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("mysql job store: nil db")
	}
	return s.DB.PingContext(ctx)
}
