package data

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/data/sqlutil"
	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// Advisory lock keys for reaper deletes.
// Two-arg pg_try_advisory_xact_lock(major, minor) keeps the namespace separate from other apps.
const (
	advisoryLockReaperMajor  = 4100
	advisoryLockReaperDelete = 1
)

// PostgresJobStore stores job records in the sbobine_jobs table.
type PostgresJobStore struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewPostgresJobStore creates a PostgresJobStore over an open pgx-backed *sql.DB.
func NewPostgresJobStore(db *sql.DB, logger *slog.Logger) *PostgresJobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{DB: db, logger: logger.With("component", "postgres_job_store")}
}

// Put upserts the record.
func (s *PostgresJobStore) Put(ctx context.Context, rec *model.JobRecord) error {
	b, err := encodeJob(rec)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO sbobine_jobs (job_id, status, progress, record, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			progress = EXCLUDED.progress,
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at
	`, rec.JobID, string(rec.Status), rec.Progress, b, rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	return mapStoreError("put job", err)
}

// Get loads a record by id.
func (s *PostgresJobStore) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	var b []byte
	err := s.DB.QueryRowContext(ctx, `SELECT record FROM sbobine_jobs WHERE job_id = $1`, jobID).Scan(&b)
	if err != nil {
		return nil, mapStoreError("get job", err)
	}
	return decodeJob(b)
}

// DeleteTerminalBefore deletes up to BatchSize terminal records older than the cutoff.
// Concurrent reapers skip the run when another instance holds the advisory lock.
func (s *PostgresJobStore) DeleteTerminalBefore(ctx context.Context, params core.DeleteTerminalParams) (int64, error) {
	if !params.Status.IsTerminal() {
		return 0, errNonTerminalStatus(params.Status)
	}

	var deleted int64
	err := sqlutil.WithTx(ctx, s.DB, sqlutil.TxConfig{
		Fn: func(tx *sql.Tx) error {
			var locked bool
			if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1, $2)",
				advisoryLockReaperMajor, advisoryLockReaperDelete).Scan(&locked); err != nil {
				return mapStoreError("acquire advisory lock", err)
			}
			if !locked {
				s.logger.DebugContext(ctx, "reaper lock held elsewhere, skipping")
				return nil
			}

			res, err := tx.ExecContext(ctx, `
				DELETE FROM sbobine_jobs
				WHERE job_id IN (
					SELECT job_id FROM sbobine_jobs
					WHERE status = $1 AND updated_at < $2
					ORDER BY updated_at
					LIMIT $3
				)
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
func (s *PostgresJobStore) Health(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("postgres job store: nil db")
	}
	return s.DB.PingContext(ctx)
}
