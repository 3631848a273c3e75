package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/internal/core"
	"github.com/sbobine/sbobine-api/internal/data"
	"github.com/sbobine/sbobine-api/internal/gateway"
	"github.com/sbobine/sbobine-api/internal/service"
)

// holdPool accepts tasks without running them, or rejects everything when err is set.
type holdPool struct {
	mu    sync.Mutex
	tasks []service.Task
	err   error
}

func (p *holdPool) TrySubmit(task service.Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

type testEnv struct {
	store    *data.MemoryJobStore
	pool     *holdPool
	pipeline *service.PipelineService
	handler  http.Handler
}

func newTestEnv(t *testing.T, gw core.Gateway) *testEnv {
	t.Helper()
	if gw == nil {
		gw = gateway.New(gateway.Options{})
	}
	store := data.NewMemoryJobStore()
	pool := &holdPool{}
	pipeline, err := service.NewPipelineService(service.PipelineServiceOptions{
		Store:   store,
		Gateway: gw,
		Pool:    pool,
	})
	require.NoError(t, err)

	handler := NewRouter(RouterServices{
		Pipeline:       pipeline,
		Gateway:        gw,
		Health:         nil,
		MaxUploadBytes: 4 << 20,
	})
	return &testEnv{store: store, pool: pool, pipeline: pipeline, handler: handler}
}

type multipartFile struct {
	field       string
	fileName    string
	contentType string
	data        []byte
}

// multipartBody builds a multipart form with optional file and plain fields.
func multipartBody(t *testing.T, file *multipartFile, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+file.field+`"; filename="`+file.fileName+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func audioFile(size int) *multipartFile {
	return &multipartFile{
		field:       "audio",
		fileName:    "lezione.mp3",
		contentType: "audio/mpeg",
		data:        bytes.Repeat([]byte{0xFF}, size),
	}
}

type successBody[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeBody[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}
