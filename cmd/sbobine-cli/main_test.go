package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbobine/sbobine-api/config"
	"github.com/sbobine/sbobine-api/internal/data"
	"github.com/sbobine/sbobine-api/internal/domain/model"
	"github.com/sbobine/sbobine-api/internal/gateway"
	httpx "github.com/sbobine/sbobine-api/internal/http"
	"github.com/sbobine/sbobine-api/internal/service"
)

type inlinePool struct{}

func (inlinePool) TrySubmit(task service.Task) error {
	task.Run(context.Background())
	return nil
}

func newTestContext(t *testing.T) (*commandContext, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	return &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: config.AppConfig{},
		Out:    &out,
		Err:    &errOut,
	}, &out, &errOut
}

func newDemoServer(t *testing.T) *httptest.Server {
	t.Helper()
	gw := gateway.New(gateway.Options{})
	pipeline, err := service.NewPipelineService(service.PipelineServiceOptions{
		Store:   data.NewMemoryJobStore(),
		Gateway: gw,
		Pool:    inlinePool{},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(httpx.NewRouter(httpx.RouterServices{
		Pipeline:           pipeline,
		Gateway:            gw,
		MaxUploadBytes:     8 << 20,
		StreamPollInterval: 10 * time.Millisecond,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestPrintUsage_ListsCommandsSorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))

	out := buf.String()
	assert.Contains(t, out, "Usage: sbobine-cli <command> [flags]")
	for name := range commands() {
		assert.Contains(t, out, "  "+name)
	}
	assert.Less(t, strings.Index(out, "concept-map"), strings.Index(out, "watch"))
}

func TestParseProcessFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
		check   func(t *testing.T, opts processOptions)
	}{
		{
			name:    "file required",
			args:    []string{"-user", "u-1"},
			wantErr: "--file is required",
		},
		{
			name:    "user required",
			args:    []string{"-file", "a.mp3", "-user", "  "},
			wantErr: "--user is required",
		},
		{
			name: "defaults",
			args: []string{"-file", "a.mp3", "-user", "u-1"},
			check: func(t *testing.T, opts processOptions) {
				assert.Equal(t, "it", opts.Language)
				assert.Equal(t, 60, opts.Attempts)
				assert.Equal(t, 5*time.Second, opts.Interval)
				assert.False(t, opts.Watch)
			},
		},
		{
			name: "overrides",
			args: []string{"-file", "a.mp3", "-user", "u-1", "-language", "en", "-watch", "-server", "http://api:9000"},
			check: func(t *testing.T, opts processOptions) {
				assert.Equal(t, "en", opts.Language)
				assert.True(t, opts.Watch)
				assert.Equal(t, "http://api:9000", opts.Server.URL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdCtx, _, _ := newTestContext(t)
			opts, err := parseProcessFlags(cmdCtx, tt.args)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestParseStatusFlags(t *testing.T) {
	cmdCtx, _, _ := newTestContext(t)

	opts, err := parseStatusFlags(cmdCtx, "status", []string{"job-42"})
	require.NoError(t, err)
	assert.Equal(t, "job-42", opts.JobID)

	_, err = parseStatusFlags(cmdCtx, "status", nil)
	require.EqualError(t, err, "--job is required")

	_, err = parseStatusFlags(cmdCtx, "status", []string{"-job", "j", "-query", "result.["})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --query")
}

func TestParseMigrateFlags_RejectsNonPositiveTimeout(t *testing.T) {
	cmdCtx, _, _ := newTestContext(t)

	_, err := parseMigrateFlags(cmdCtx, []string{"-timeout", "0s"})
	require.Error(t, err)

	opts, err := parseMigrateFlags(cmdCtx, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)
}

func TestRunMigrations_RejectsNonSQLBackend(t *testing.T) {
	cmdCtx, _, _ := newTestContext(t)
	cmdCtx.Config.Store.Backend = config.StoreBackendRedis

	err := runMigrations(cmdCtx, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no schema to migrate")
}

func TestApplyQuery(t *testing.T) {
	rec := &model.JobRecord{
		JobID:    "j-1",
		Status:   model.JobStatusCompleted,
		Progress: 100,
	}

	tests := []struct {
		name string
		expr string
		want any
	}{
		{name: "empty returns input", expr: "", want: rec},
		{name: "scalar field", expr: "status", want: "COMPLETED"},
		{name: "number", expr: "progress", want: float64(100)},
		{name: "multiselect", expr: "{id: jobId, p: progress}", want: map[string]any{"id": "j-1", "p": float64(100)}},
		{name: "missing field", expr: "result.summary", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := applyQuery(rec, tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadText(t *testing.T) {
	path := writeTemp(t, "lezione.txt", []byte("  testo della lezione \n"))

	got, err := readText(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "testo della lezione", got)

	got, err = readText("-", strings.NewReader("da stdin"))
	require.NoError(t, err)
	assert.Equal(t, "da stdin", got)

	_, err = readText("-", strings.NewReader("   "))
	require.EqualError(t, err, "transcript is empty")
}

func TestTextCommand_SummarizeDemo(t *testing.T) {
	srv := newDemoServer(t)
	cmdCtx, out, _ := newTestContext(t)
	path := writeTemp(t, "lezione.txt", []byte(strings.Repeat("La fotosintesi clorofilliana. ", 5)))

	err := textCommand("summarize")(cmdCtx, []string{
		"-server", srv.URL, "-file", path, "-language", "en", "-query", "{model: modelUsed, lang: language}",
	})
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]string{"model": model.ModelDemo, "lang": "en"}, got)
}

func TestRunProcess_DemoPollsToCompletion(t *testing.T) {
	srv := newDemoServer(t)
	cmdCtx, out, errOut := newTestContext(t)
	audio := writeTemp(t, "lezione.mp3", bytes.Repeat([]byte{0xFF}, 1<<20))

	err := runProcess(cmdCtx, []string{
		"-server", srv.URL, "-file", audio, "-user", "studente-1", "-interval", "10ms", "-query", "status",
	})
	require.NoError(t, err)

	assert.Equal(t, "\"COMPLETED\"\n", out.String())
	assert.Contains(t, errOut.String(), "accepted")
}

func TestRunStatus_UnknownJob(t *testing.T) {
	srv := newDemoServer(t)
	cmdCtx, _, _ := newTestContext(t)

	err := runStatus(cmdCtx, []string{"-server", srv.URL, "-job", "missing"})
	require.Error(t, err)
}
