package config

import (
	"fmt"
	"strings"
	"time"
)

// StoreBackend selects the job store implementation.
type StoreBackend string

const (
	// StoreBackendMemory keeps jobs in process memory.
	StoreBackendMemory StoreBackend = "memory"
	// StoreBackendRedis stores jobs as JSON values with a TTL.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres stores jobs in the sbobine_jobs table.
	StoreBackendPostgres StoreBackend = "postgres"
	// StoreBackendMySQL stores jobs in the sbobine_jobs table.
	StoreBackendMySQL StoreBackend = "mysql"
)

// UnmarshalText implements encoding.TextUnmarshaler so env parsing validates the backend.
func (b *StoreBackend) UnmarshalText(text []byte) error {
	v := StoreBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StoreBackendMemory, StoreBackendRedis, StoreBackendPostgres, StoreBackendMySQL:
		*b = v
		return nil
	case "":
		*b = StoreBackendMemory
		return nil
	default:
		return fmt.Errorf("invalid job store backend: %q (valid options: memory, redis, postgres, mysql)", string(text))
	}
}

// IsSQL reports whether the backend needs a database/sql connection and migrations.
func (b StoreBackend) IsSQL() bool {
	return b == StoreBackendPostgres || b == StoreBackendMySQL
}

// StoreConfig selects and tunes the job store.
type StoreConfig struct {
	Backend StoreBackend `env:"JOB_STORE_BACKEND" envDefault:"memory"`

	// TTL bounds how long Redis keeps a job record.
	TTL time.Duration `env:"JOB_STORE_TTL" envDefault:"24h"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"JOB_STORE_KEY_PREFIX" envDefault:"sbobine:job:"`
}

// Sanitize applies guardrails to job store configuration values.
func (s *StoreConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StoreBackendMemory
	}
	if s.TTL < time.Minute {
		s.TTL = time.Minute
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
	if s.KeyPrefix == "" {
		s.KeyPrefix = "sbobine:job:"
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"sbobine"`
	Password string `env:"PASSWORD"                envDefault:"sbobine"`
	Name     string `env:"NAME"                    envDefault:"sbobine"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// MySQLConfig contains MySQL database configuration.
type MySQLConfig struct {
	// DSN in go-sql-driver format, e.g. user:pass@tcp(host:3306)/sbobine.
	DSN                  string `env:"DSN"                     envDefault:"sbobine:sbobine@tcp(localhost:3306)/sbobine"`
	RunMigrationsOnStart bool   `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
