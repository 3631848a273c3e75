package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/sbobine/sbobine-api/internal/migrate"
)

// DefaultTestMySQLDSN is used when TEST_MYSQL_DSN is unset.
const DefaultTestMySQLDSN = "sbobine:sbobine@tcp(localhost:53306)/sbobine"

// TestMySQLConfig returns the driver config for the MySQL test database.
// parseTime and UTC locations are forced so DATETIME columns round-trip as time.Time.
func TestMySQLConfig() (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(getEnvOrDefault("TEST_MYSQL_DSN", DefaultTestMySQLDSN))
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// SetupTestMySQL opens the MySQL test database, applies migrations and empties the jobs table.
// The test is skipped when MySQL is unreachable.
func SetupTestMySQL(t TestingTB) *sql.DB {
	t.Helper()

	cfg, err := TestMySQLConfig()
	if err != nil {
		t.Fatal("Invalid TEST_MYSQL_DSN:", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		t.Fatal("Failed to create MySQL connector:", err)
	}
	db := sql.OpenDB(connector)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		closeAndLog(t, "mysql db", db)
		skipOrFail(t, requireMySQL(), "MySQL not available for testing:", err)
		return nil
	}
	if err := migrate.Run(ctx, db, migrate.DialectMySQL); err != nil {
		closeAndLog(t, "mysql db", db)
		t.Fatal("Failed to run MySQL migrations:", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM sbobine_jobs"); err != nil {
		t.Fatalf("Failed to clean up table sbobine_jobs: %v", err)
	}

	registerCleanup(t, func() { closeAndLog(t, "mysql db", db) })
	return db
}
