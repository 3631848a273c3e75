package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

// DefaultRedisKeyPrefix namespaces job keys in a shared Redis.
const DefaultRedisKeyPrefix = "sbobine:job:"

// RedisJobStoreOptions configures a RedisJobStore.
type RedisJobStoreOptions struct {
	Client    redis.UniversalClient
	KeyPrefix string
	// TTL is applied on every write; zero keeps records forever.
	TTL time.Duration
}

// RedisJobStore stores job records as JSON strings with a rolling TTL.
// Eviction is left to Redis expiry, so it does not implement core.JobReaper.
type RedisJobStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisJobStore creates a new RedisJobStore.
func NewRedisJobStore(opts RedisJobStoreOptions) (*RedisJobStore, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisJobStore{client: opts.Client, prefix: prefix, ttl: opts.TTL}, nil
}

func (r *RedisJobStore) key(jobID string) string {
	return r.prefix + jobID
}

// Put stores the record and refreshes its TTL.
func (r *RedisJobStore) Put(ctx context.Context, rec *model.JobRecord) error {
	b, err := encodeJob(rec)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(rec.JobID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Get retrieves a record by id.
func (r *RedisJobStore) Get(ctx context.Context, jobID string) (*model.JobRecord, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	b, err := r.client.Get(ctx, r.key(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrJobNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeJob(b)
}

// TTL reports the remaining lifetime of a stored record.
func (r *RedisJobStore) TTL(ctx context.Context, jobID string) (time.Duration, error) {
	d, err := r.client.TTL(ctx, r.key(jobID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl: %w", err)
	}
	return d, nil
}

// Health checks the health of the Redis connection.
func (r *RedisJobStore) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
