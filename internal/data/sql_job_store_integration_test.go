package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	"github.com/sbobine/sbobine-api/internal/testutil"
)

type sqlStore interface {
	core.JobStore
	core.JobReaper
	core.HealthChecker
}

func exerciseSQLStore(t *testing.T, store sqlStore) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	rec := model.NewJobRecord(base)
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, rec.JobID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, got.Status)

	next := rec.Advance(model.JobStatusElaborating, base.Add(time.Second))
	require.NoError(t, store.Put(ctx, next))
	got, err = store.Get(ctx, rec.JobID)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Progress)

	_, err = store.Get(ctx, "missing-job")
	require.ErrorIs(t, err, model.ErrJobNotFound)

	old := model.NewJobRecord(base.Add(-48*time.Hour)).Fail("transcription failed: boom", base.Add(-48*time.Hour))
	require.NoError(t, store.Put(ctx, old))

	n, err := store.DeleteTerminalBefore(ctx, core.DeleteTerminalParams{
		Status:    model.JobStatusError,
		Before:    base.Add(-24 * time.Hour),
		BatchSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, old.JobID)
	require.ErrorIs(t, err, model.ErrJobNotFound)
	_, err = store.Get(ctx, rec.JobID)
	require.NoError(t, err, "non-terminal jobs survive the reaper")

	require.NoError(t, store.Health(ctx))
}

func TestPostgresJobStore_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		exerciseSQLStore(t, NewPostgresJobStore(db, nil))
	})
}

func TestMySQLJobStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db := testutil.SetupTestMySQL(t)
	exerciseSQLStore(t, NewMySQLJobStore(db))
}
