package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{"deadline exceeded", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"wrapped deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"sql no rows", sql.ErrNoRows, ErrCodeNotFound},
		{"pgx no rows", pgx.ErrNoRows, ErrCodeNotFound},
		{"redis nil", redis.Nil, ErrCodeNotFound},
		{"pg unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "job_id"}, ErrCodeConflict},
		{"pg check", &pgconn.PgError{Code: pgerrcode.CheckViolation}, ErrCodeValidation},
		{"pg not null", &pgconn.PgError{Code: pgerrcode.NotNullViolation}, ErrCodeValidation},
		{"pg query canceled", &pgconn.PgError{Code: pgerrcode.QueryCanceled}, ErrCodeTimeout},
		{"pg other", &pgconn.PgError{Code: pgerrcode.DiskFull}, ErrCodeInternal},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, ErrCodeConflict},
		{"mysql too long", &mysql.MySQLError{Number: 1406}, ErrCodeValidation},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, ErrCodeTimeout},
		{"mysql other", &mysql.MySQLError{Number: 1146}, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
			if !errors.Is(err, tt.err) {
				var pgErr *pgconn.PgError
				var myErr *mysql.MySQLError
				if !errors.As(err, &pgErr) && !errors.As(err, &myErr) {
					t.Errorf("MapDBError() lost cause %v", tt.err)
				}
			}
		})
	}
}

func TestMapDBError_UniqueField(t *testing.T) {
	err := MapDBError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "job_id"})
	if got := GetField(err); got != "job_id" {
		t.Errorf("GetField() = %q, want job_id", got)
	}
}

func TestMapDBError_Unrecognized(t *testing.T) {
	orig := errors.New("something else")
	if got := MapDBError(orig); !errors.Is(got, orig) || GetCode(got) != "" {
		t.Errorf("MapDBError(unrecognized) = %v, want original", got)
	}
}
