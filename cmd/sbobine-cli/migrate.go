package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/bootstrap"
	"github.com/sbobine/sbobine-api/internal/migrate"
)

const defaultMigrationTimeout = 5 * time.Minute

type migrateOptions struct {
	Timeout time.Duration
	Backend string
}

func parseMigrateFlags(cmdCtx *commandContext, args []string) (migrateOptions, error) {
	fs := newFlagSet("migrate", cmdCtx)
	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Maximum duration for the migration run")
	fs.StringVar(&opts.Backend, "backend", "", "Override JOB_STORE_BACKEND (postgres|mysql)")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, fmt.Errorf("--timeout must be positive, got %s", opts.Timeout)
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(cmdCtx, args)
	if err != nil {
		return err
	}

	backend := cmdCtx.Config.Store.Backend
	if opts.Backend != "" {
		if err := backend.UnmarshalText([]byte(opts.Backend)); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, dialect, err := openSQL(cmdCtx, backend)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("running database migrations", "dialect", string(dialect))
	if err := bootstrap.RunMigrations(ctx, db, dialect, cmdCtx.Logger); err != nil {
		return err
	}
	version, err := migrate.Version(ctx, db, dialect)
	if err != nil {
		return err
	}
	return writef(cmdCtx.Out, "schema version %d (%s)\n", version, dialect)
}

func openSQL(cmdCtx *commandContext, backend config.StoreBackend) (*sql.DB, migrate.Dialect, error) {
	dbCfg := bootstrap.DatabaseConfig{
		DBConfig:    cmdCtx.Config.Postgres,
		MySQLConfig: cmdCtx.Config.MySQL,
		Logger:      cmdCtx.Logger,
	}
	switch backend {
	case config.StoreBackendPostgres:
		db, err := bootstrap.ConnectDB(dbCfg)
		if err != nil {
			return nil, "", fmt.Errorf("connect db: %w", err)
		}
		return db, migrate.DialectPostgres, nil
	case config.StoreBackendMySQL:
		db, err := bootstrap.ConnectMySQL(dbCfg)
		if err != nil {
			return nil, "", fmt.Errorf("connect mysql: %w", err)
		}
		return db, migrate.DialectMySQL, nil
	default:
		return nil, "", fmt.Errorf("job store backend %q has no schema to migrate", backend)
	}
}

