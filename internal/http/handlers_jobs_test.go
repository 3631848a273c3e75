package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/domain/model"
	"github.com/sbobine/sbobine-api/internal/service"
)

func postProcess(t *testing.T, h http.Handler, file *multipartFile, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, file, fields)
	r := httptest.NewRequest(http.MethodPost, "/process", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestProcess_Accepted(t *testing.T) {
	env := newTestEnv(t, nil)

	w := postProcess(t, env.handler, audioFile(1024*1024), map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusOK, w.Code)

	got := decodeBody[successBody[service.SubmitResult]](t, w.Body)
	assert.True(t, got.Success)
	assert.NotEmpty(t, got.Data.JobID)
	assert.Equal(t, model.JobStatusProcessing, got.Data.Status)
	assert.Equal(t, "Elaborazione avviata. Controlla lo stato del job.", got.Data.Message)
	assert.Equal(t, 2, got.Data.EstimatedTime)

	// The PROCESSING record is readable immediately.
	r := httptest.NewRequest(http.MethodGet, "/job/"+got.Data.JobID, nil)
	rw := httptest.NewRecorder()
	env.handler.ServeHTTP(rw, r)
	require.Equal(t, http.StatusOK, rw.Code)
	rec := decodeBody[successBody[model.JobRecord]](t, rw.Body)
	assert.Equal(t, model.JobStatusProcessing, rec.Data.Status)
	assert.Equal(t, 0, rec.Data.Progress)
}

func TestProcess_Validation(t *testing.T) {
	tests := []struct {
		name    string
		file    *multipartFile
		fields  map[string]string
		message string
	}{
		{
			name:    "missing audio",
			fields:  map[string]string{"userId": "user-1"},
			message: "File audio non trovato",
		},
		{
			name:    "missing user id",
			file:    audioFile(128),
			message: "ID utente richiesto",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)

			w := postProcess(t, env.handler, tt.file, tt.fields)
			require.Equal(t, http.StatusBadRequest, w.Code)

			got := decodeBody[errorBody](t, w.Body)
			assert.Equal(t, tt.message, got.Error)
			assert.Equal(t, "validation", got.Code)
			assert.Zero(t, env.store.Len(), "rejected submissions never reach the store")
			assert.Empty(t, env.pool.tasks)
		})
	}
}

func TestProcess_TooLarge(t *testing.T) {
	env := newTestEnv(t, nil)

	w := postProcess(t, env.handler, audioFile(5<<20), map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Zero(t, env.store.Len())
}

func TestProcess_PoolFull(t *testing.T) {
	env := newTestEnv(t, nil)
	env.pool.err = service.ErrQueueFull

	w := postProcess(t, env.handler, audioFile(64), map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	got := decodeBody[errorBody](t, w.Body)
	assert.Equal(t, "unavailable", got.Code)
	assert.NotEmpty(t, got.Error)
}

func TestGetJob_NotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	r := httptest.NewRequest(http.MethodGet, "/job/missing", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	got := decodeBody[errorBody](t, w.Body)
	assert.Equal(t, "Job non trovato", got.Error)
	assert.Equal(t, "not_found", got.Code)
}

func TestProcess_OfflineRunCompletes(t *testing.T) {
	env := newTestEnv(t, nil)

	w := postProcess(t, env.handler, audioFile(1024*1024), map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusOK, w.Code)
	submitted := decodeBody[successBody[service.SubmitResult]](t, w.Body)

	require.Len(t, env.pool.tasks, 1)
	env.pool.tasks[0].Run(context.Background())

	// Reads are idempotent once the job is terminal.
	var first, second model.JobRecord
	for i, dst := range []*model.JobRecord{&first, &second} {
		r := httptest.NewRequest(http.MethodGet, "/job/"+submitted.Data.JobID, nil)
		rw := httptest.NewRecorder()
		env.handler.ServeHTTP(rw, r)
		require.Equal(t, http.StatusOK, rw.Code, "read %d", i)
		*dst = decodeBody[successBody[model.JobRecord]](t, rw.Body).Data
	}
	assert.Equal(t, first, second)

	assert.Equal(t, model.JobStatusCompleted, first.Status)
	assert.Equal(t, 100, first.Progress)
	require.NotNil(t, first.Result)
	assert.Equal(t, "it", first.Result.AudioFile.Language)
	assert.Equal(t, model.ModelDemo, first.Result.Transcription.ModelUsed)

	nodeIDs := map[string]bool{}
	for _, n := range first.Result.ConceptMap.Nodes {
		nodeIDs[n.ID] = true
	}
	for _, c := range first.Result.ConceptMap.Connections {
		assert.True(t, nodeIDs[c.From], "connection from %q", c.From)
		assert.True(t, nodeIDs[c.To], "connection to %q", c.To)
	}
	for _, q := range first.Result.Quiz.Questions {
		assert.GreaterOrEqual(t, len(q.Options), 4)
	}
}
