package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/data"
	"github.com/sbobine/sbobine-api/internal/migrate"
)

// JobStoreBundle is the job store selected by configuration plus the optional
// capabilities it implements.
type JobStoreBundle struct {
	Backend config.StoreBackend
	Store   core.JobStore
	// Reaper is nil for Redis, where key expiry evicts records.
	Reaper core.JobReaper
	// Health is nil for the in-memory store.
	Health core.HealthChecker

	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases the underlying connections.
func (b *JobStoreBundle) Close() error {
	var errs []error
	if b.DB != nil {
		if err := b.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// OpenJobStore connects the configured backend and runs migrations when enabled.
func OpenJobStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*JobStoreBundle, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	dbCfg := DatabaseConfig{
		DBConfig:    cfg.Postgres,
		MySQLConfig: cfg.MySQL,
		RedisConfig: cfg.Redis,
		Logger:      logger,
	}

	bundle := &JobStoreBundle{Backend: cfg.Store.Backend}
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		client, err := ConnectRedis(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store, err := data.NewRedisJobStore(data.RedisJobStoreOptions{
			Client:    client,
			KeyPrefix: cfg.Store.KeyPrefix,
			TTL:       cfg.Store.TTL,
		})
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		bundle.Redis = client
		bundle.Store = store
		bundle.Health = store

	case config.StoreBackendPostgres:
		db, err := ConnectDB(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		bundle.DB = db
		if err := migrateOnStart(ctx, bundle, migrate.DialectPostgres, cfg.Postgres.RunMigrationsOnStart, logger); err != nil {
			return nil, err
		}
		store := data.NewPostgresJobStore(db, logger)
		bundle.Store, bundle.Reaper, bundle.Health = store, store, store

	case config.StoreBackendMySQL:
		db, err := ConnectMySQL(dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect mysql: %w", err)
		}
		bundle.DB = db
		if err := migrateOnStart(ctx, bundle, migrate.DialectMySQL, cfg.MySQL.RunMigrationsOnStart, logger); err != nil {
			return nil, err
		}
		store := data.NewMySQLJobStore(db)
		bundle.Store, bundle.Reaper, bundle.Health = store, store, store

	default:
		store := data.NewMemoryJobStore()
		bundle.Store, bundle.Reaper = store, store
	}

	logger.InfoContext(ctx, "job store ready", "backend", string(bundle.Backend))
	return bundle, nil
}

func migrateOnStart(ctx context.Context, bundle *JobStoreBundle, dialect migrate.Dialect, enabled bool, logger *slog.Logger) error {
	if !enabled {
		logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		return nil
	}
	if err := RunMigrations(ctx, bundle.DB, dialect, logger); err != nil {
		if cerr := bundle.Close(); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	return nil
}
