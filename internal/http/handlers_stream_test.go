package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/domain/model"
)

func newStreamServer(t *testing.T, env *testEnv) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(RouterServices{
		Pipeline:           env.pipeline,
		Gateway:            nil,
		StreamPollInterval: 10 * time.Millisecond,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, srv *httptest.Server, jobID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/job/" + jobID + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readRecord(t *testing.T, conn *websocket.Conn) model.JobRecord {
	t.Helper()
	var msg successBody[model.JobRecord]
	require.NoError(t, conn.ReadJSON(&msg))
	assert.True(t, msg.Success)
	return msg.Data
}

func TestStream_SendsChangesUntilTerminal(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := newStreamServer(t, env)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := model.NewJobRecord(base)
	require.NoError(t, env.store.Put(ctx, rec))

	conn := dialStream(t, srv, rec.JobID)

	first := readRecord(t, conn)
	assert.Equal(t, model.JobStatusProcessing, first.Status)

	rec = rec.Advance(model.JobStatusTranscribing, base.Add(time.Second))
	require.NoError(t, env.store.Put(ctx, rec))
	second := readRecord(t, conn)
	assert.Equal(t, model.JobStatusTranscribing, second.Status)
	assert.Equal(t, 25, second.Progress)

	rec = rec.Fail("transcription failed: timeout", base.Add(2*time.Second))
	require.NoError(t, env.store.Put(ctx, rec))
	last := readRecord(t, conn)
	assert.Equal(t, model.JobStatusError, last.Status)
	assert.Equal(t, "transcription failed: timeout", last.Error)

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestStream_TerminalJobClosesAfterOneMessage(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := newStreamServer(t, env)

	now := time.Now()
	rec := model.NewJobRecord(now).Fail("server busy", now)
	require.NoError(t, env.store.Put(context.Background(), rec))

	conn := dialStream(t, srv, rec.JobID)
	got := readRecord(t, conn)
	assert.Equal(t, model.JobStatusError, got.Status)

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, string(model.JobStatusError), closeErr.Text)
}

func TestStream_UnknownJob(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := newStreamServer(t, env)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/job/missing/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
