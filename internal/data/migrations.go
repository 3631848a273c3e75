package data

import (
	"context"
	"database/sql"

	"github.com/sbobine/sbobine-api/internal/migrate"
)

// RunMigrations sets up the sbobine_jobs schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB, dialect migrate.Dialect) error {
	return migrate.Run(ctx, db, dialect)
}
